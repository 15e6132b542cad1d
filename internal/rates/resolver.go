package rates

import (
	"context"
	"fmt"
	"log/slog"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
)

// DefaultURL is the built-in rate source used when nothing else is configured.
const DefaultURL = "https://api.exchangerate-api.com/v4/latest/USD"

// Resolution is a validated snapshot together with the URL that produced it.
type Resolution struct {
	Rates        core.RateSnapshot `json:"rates"`
	EffectiveURL string            `json:"url"`
}

// Resolver turns a configured source URL into a validated snapshot, falling
// back to the default source once when the candidate fails.
type Resolver struct {
	fetcher Fetcher
}

func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Fetch retrieves url, normalizes the payload and validates the four
// required codes. It makes exactly one attempt.
func (r *Resolver) Fetch(ctx context.Context, url string) (core.RateSnapshot, error) {
	raw, err := r.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return nil, err
	}
	snapshot, err := Validate(Normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("rates from %s: %w", url, err)
	}
	return snapshot, nil
}

// Resolve tries candidateURL (or defaultURL when candidateURL is empty).
// If a distinct candidate fails, defaultURL is tried once; if that fails too
// the result is RatesUnavailable carrying the candidate's error. When only
// the default was tried its error is returned as is.
func (r *Resolver) Resolve(ctx context.Context, candidateURL, defaultURL string) (Resolution, error) {
	primary := candidateURL
	if primary == "" {
		primary = defaultURL
	}

	snapshot, err := r.Fetch(ctx, primary)
	if err == nil {
		return Resolution{Rates: snapshot, EffectiveURL: primary}, nil
	}
	if candidateURL == "" || candidateURL == defaultURL {
		return Resolution{}, err
	}

	slog.WarnContext(ctx, "Candidate rate source failed, trying default",
		applog.FieldComponent, applog.ComponentRates,
		"url", candidateURL,
		"default_url", defaultURL,
		"error", err)

	snapshot, fallbackErr := r.Fetch(ctx, defaultURL)
	if fallbackErr != nil {
		return Resolution{}, core.RatesUnavailable(candidateURL, err, fallbackErr)
	}
	return Resolution{Rates: snapshot, EffectiveURL: defaultURL}, nil
}
