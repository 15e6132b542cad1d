package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
	"costmanager/internal/settings"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, inFlight := s.tracer.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"requests": map[string]int64{
			"total":    total,
			"inFlight": inFlight,
		},
	})
}

// handleReady checks the store and the rate directory.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	if s.deps.Ready != nil {
		if err := s.deps.Ready(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	if s.deps.Settings != nil {
		if st, err := s.deps.Settings.Current(ctx); err != nil {
			checks["rates"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else if st.Initialized {
			checks["rates"] = "ok"
		} else {
			// Conversions still work on the built-in snapshot.
			checks["rates"] = "defaults"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"currencies": core.SupportedCurrencies,
		"default":    s.defaultCurrency,
	})
}

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	draft, err := ParseCostRequest(r, w)
	if err != nil {
		s.writeError(w, r, applog.ComponentCost, applog.OpAddCost, err, nil)
		return
	}

	saved, err := s.deps.Costs.AddCost(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, applog.ComponentCost, applog.OpAddCost, err, nil)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Cost added",
		applog.NewFields().
			WithCost(saved.Sum, string(saved.Currency), saved.Category).
			WithComponent(applog.ComponentCost).
			WithOperation(applog.OpAddCost).
			ToSlice()...)

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	period, err := ParsePeriod(r.URL.Query(), now.Year(), int(now.Month()), false)
	if err != nil {
		s.writeError(w, r, applog.ComponentReport, applog.OpReport, err, nil)
		return
	}
	fields := applog.NewFields().WithPeriod(period.Year, monthOrZero(period.Month))

	currency, err := ParseCurrencyParam(r.URL.Query(), s.defaultCurrency)
	if err != nil {
		s.writeError(w, r, applog.ComponentReport, applog.OpReport, err, fields)
		return
	}

	rep, err := s.deps.Reports.BuildReport(r.Context(), period.Year, period.Month, currency)
	if err != nil {
		s.writeError(w, r, applog.ComponentReport, applog.OpReport, err, fields)
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Report built",
		fields.
			WithComponent(applog.ComponentReport).
			WithOperation(applog.OpReport).
			ToSlice()...)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	period, err := ParsePeriod(r.URL.Query(), now.Year(), int(now.Month()), true)
	if err != nil {
		s.writeError(w, r, applog.ComponentReport, applog.OpCharts, err, nil)
		return
	}
	fields := applog.NewFields().WithPeriod(period.Year, *period.Month)

	currency, err := ParseCurrencyParam(r.URL.Query(), s.defaultCurrency)
	if err != nil {
		s.writeError(w, r, applog.ComponentReport, applog.OpCharts, err, fields)
		return
	}

	charts, err := s.deps.Reports.Charts(r.Context(), period.Year, *period.Month, currency)
	if err != nil {
		s.writeError(w, r, applog.ComponentReport, applog.OpCharts, err, fields)
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Charts built",
		fields.
			WithComponent(applog.ComponentReport).
			WithOperation(applog.OpCharts).
			ToSlice()...)
	writeJSON(w, http.StatusOK, charts)
}

func monthOrZero(m *int) int {
	if m == nil {
		return 0
	}
	return *m
}

func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Settings.Current(r.Context())
	if err != nil {
		s.writeError(w, r, applog.ComponentSettings, applog.OpBootstrap, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type ratesSourceRequest struct {
	URL string `json:"url"`
}

func (s *Server) handlePutRates(w http.ResponseWriter, r *http.Request) {
	var req ratesSourceRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, applog.ComponentSettings, applog.OpTestAndSave, err, nil)
		return
	}

	st, err := s.deps.Settings.TestAndSave(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		s.writeError(w, r, applog.ComponentSettings, applog.OpTestAndSave, err, nil)
		return
	}
	s.logRatesChange(r, applog.OpTestAndSave, st)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleResetRates(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Settings.ResetToDefault(r.Context())
	if err != nil {
		s.writeError(w, r, applog.ComponentSettings, applog.OpReset, err, nil)
		return
	}
	s.logRatesChange(r, applog.OpReset, st)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) logRatesChange(r *http.Request, op string, st settings.State) {
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Rate source changed",
		applog.FieldComponent, applog.ComponentSettings,
		applog.FieldOperation, op,
		applog.FieldRatesURL, st.URL)
}
