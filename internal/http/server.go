// Package http exposes the cost store, reports and rate settings as a JSON
// API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
	"costmanager/internal/middleware/ratelimit"
	"costmanager/internal/middleware/security"
	"costmanager/internal/middleware/trace"
	"costmanager/internal/settings"
)

// CostAdder records costs.
type CostAdder interface {
	AddCost(ctx context.Context, draft core.CostDraft) (core.CostDraft, error)
}

// ReportBuilder computes reports and chart series.
type ReportBuilder interface {
	BuildReport(ctx context.Context, year int, month *int, target core.Currency) (core.Report, error)
	Charts(ctx context.Context, year, month int, target core.Currency) (core.Charts, error)
}

// RateSettings manages the exchange-rate source.
type RateSettings interface {
	Current(ctx context.Context) (settings.State, error)
	TestAndSave(ctx context.Context, url string) (settings.State, error)
	ResetToDefault(ctx context.Context) (settings.State, error)
}

// Deps are the services behind the API.
type Deps struct {
	Costs    CostAdder
	Reports  ReportBuilder
	Settings RateSettings
	// Ready reports whether backing services can serve requests. Nil means
	// always ready.
	Ready func(ctx context.Context) error
}

// Options tune the server.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	DefaultCurrency    core.Currency
	// Now overrides the clock used for default periods.
	Now func() time.Time
}

type Server struct {
	http.Server
	deps            Deps
	limiter         *ratelimit.Limiter
	tracer          *trace.Middleware
	defaultCurrency core.Currency
	now             func() time.Time
	started         time.Time
	shutdownOnce    sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = core.USD
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ips := security.NewClientIPResolver()
	s := &Server{
		deps:            deps,
		limiter:         ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:          trace.NewMiddleware(ips.ClientIP),
		defaultCurrency: opts.DefaultCurrency,
		now:             opts.Now,
		started:         time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/currencies", s.handleCurrencies)
	mux.HandleFunc("POST /api/costs", s.handleAddCost)
	mux.HandleFunc("GET /api/reports", s.handleReport)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /api/settings/rates", s.handleGetRates)
	mux.HandleFunc("PUT /api/settings/rates", s.handlePutRates)
	mux.HandleFunc("POST /api/settings/rates/reset", s.handleResetRates)

	var h http.Handler = mux
	h = s.limiter.Middleware(ips.ClientIP, s.onRateLimited, http.MethodPost, http.MethodPut)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = applog.Middleware(opts.Logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background routines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
