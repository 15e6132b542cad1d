// Package settings manages the configured exchange-rate source and keeps
// the rate directory in sync with it.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/storage"
)

// RatesURLKey is the settings key holding the rate source URL.
const RatesURLKey = "exchangeRatesUrl"

// RateDirectory is the part of the rate directory the service drives.
type RateDirectory interface {
	SetRates(core.RateSnapshot) error
	Rates() core.RateSnapshot
	Initialized() bool
}

// State describes the active rate source.
type State struct {
	URL         string            `json:"url"`
	DefaultURL  string            `json:"defaultUrl"`
	Rates       core.RateSnapshot `json:"rates"`
	Initialized bool              `json:"initialized"`
	FetchedAt   *time.Time        `json:"fetchedAt,omitempty"`
}

type Service struct {
	store      storage.SettingsStore
	resolver   *rates.Resolver
	directory  RateDirectory
	defaultURL string
	now        func() time.Time

	mu        sync.Mutex
	fetchedAt time.Time
}

func NewService(store storage.SettingsStore, resolver *rates.Resolver, directory RateDirectory, defaultURL string) *Service {
	if defaultURL == "" {
		defaultURL = rates.DefaultURL
	}
	return &Service{
		store:      store,
		resolver:   resolver,
		directory:  directory,
		defaultURL: defaultURL,
		now:        time.Now,
	}
}

// Bootstrap resolves the saved source (falling back to the default), installs
// the rates and persists the URL that actually served them. On failure the
// directory keeps its current snapshot.
func (s *Service) Bootstrap(ctx context.Context) error {
	saved, _, err := s.store.GetSetting(ctx, RatesURLKey)
	if err != nil {
		return fmt.Errorf("read rate source: %w", err)
	}

	res, err := s.resolver.Resolve(ctx, saved, s.defaultURL)
	if err != nil {
		return err
	}
	if err := s.install(res.Rates); err != nil {
		return err
	}
	if err := s.store.PutSetting(ctx, RatesURLKey, res.EffectiveURL); err != nil {
		return fmt.Errorf("save rate source: %w", err)
	}

	slog.InfoContext(ctx, "Exchange rates loaded", applog.FieldComponent, applog.ComponentSettings, "url", res.EffectiveURL, "fallback", saved != "" && saved != res.EffectiveURL)
	return nil
}

// TestAndSave fetches rawURL once, without falling back, and only if it
// yields a valid snapshot saves it and installs its rates.
func (s *Service) TestAndSave(ctx context.Context, rawURL string) (State, error) {
	candidate := strings.TrimSpace(rawURL)
	if err := validateURL(candidate); err != nil {
		return State{}, err
	}

	snapshot, err := s.resolver.Fetch(ctx, candidate)
	if err != nil {
		return State{}, core.InvalidSetting(candidate, "rate source did not return valid rates", err)
	}
	if err := s.store.PutSetting(ctx, RatesURLKey, candidate); err != nil {
		return State{}, fmt.Errorf("save rate source: %w", err)
	}
	if err := s.install(snapshot); err != nil {
		return State{}, err
	}

	slog.InfoContext(ctx, "Rate source updated", applog.FieldComponent, applog.ComponentSettings, "url", candidate)
	return s.Current(ctx)
}

// ResetToDefault fetches the default source, saves it and installs its rates.
func (s *Service) ResetToDefault(ctx context.Context) (State, error) {
	snapshot, err := s.resolver.Fetch(ctx, s.defaultURL)
	if err != nil {
		return State{}, core.RatesUnavailable(s.defaultURL, err, nil)
	}
	if err := s.store.PutSetting(ctx, RatesURLKey, s.defaultURL); err != nil {
		return State{}, fmt.Errorf("save rate source: %w", err)
	}
	if err := s.install(snapshot); err != nil {
		return State{}, err
	}

	slog.InfoContext(ctx, "Rate source reset to default", applog.FieldComponent, applog.ComponentSettings, "url", s.defaultURL)
	return s.Current(ctx)
}

// Current reports the saved source and the active snapshot. With nothing
// saved yet the default URL is reported.
func (s *Service) Current(ctx context.Context) (State, error) {
	saved, ok, err := s.store.GetSetting(ctx, RatesURLKey)
	if err != nil {
		return State{}, fmt.Errorf("read rate source: %w", err)
	}
	if !ok || saved == "" {
		saved = s.defaultURL
	}

	st := State{
		URL:         saved,
		DefaultURL:  s.defaultURL,
		Rates:       s.directory.Rates(),
		Initialized: s.directory.Initialized(),
	}
	s.mu.Lock()
	if !s.fetchedAt.IsZero() {
		t := s.fetchedAt
		st.FetchedAt = &t
	}
	s.mu.Unlock()
	return st, nil
}

func (s *Service) install(snapshot core.RateSnapshot) error {
	if err := s.directory.SetRates(snapshot); err != nil {
		return err
	}
	s.mu.Lock()
	s.fetchedAt = s.now()
	s.mu.Unlock()
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return core.InvalidSetting(raw, "url is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return core.InvalidSetting(raw, "url is malformed", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return core.InvalidSetting(raw, "url must use http or https", nil)
	}
	if u.Host == "" {
		return core.InvalidSetting(raw, "url has no host", nil)
	}
	return nil
}
