// Package rates holds the active exchange-rate snapshot and resolves new
// snapshots from remote JSON sources.
package rates

import (
	"sync"

	"costmanager/internal/core"
)

// Directory owns the active rate snapshot. It starts with the built-in
// defaults so conversions work before any source has been resolved.
type Directory struct {
	mu          sync.RWMutex
	rates       core.RateSnapshot
	initialized bool
}

func NewDirectory() *Directory {
	return &Directory{rates: core.DefaultRates()}
}

// SetRates validates candidate and swaps it in as the active snapshot. A
// rejected candidate leaves the current snapshot untouched.
func (d *Directory) SetRates(candidate core.RateSnapshot) error {
	if err := candidate.Validate(); err != nil {
		return err
	}
	next := candidate.Clone()

	d.mu.Lock()
	d.rates = next
	d.initialized = true
	d.mu.Unlock()
	return nil
}

// Rates returns a copy of the active snapshot.
func (d *Directory) Rates() core.RateSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rates.Clone()
}

// Initialized reports whether a snapshot other than the defaults has been set.
func (d *Directory) Initialized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialized
}

// Convert computes (amount / rate[from]) * rate[to] against the active
// snapshot. Converting a currency to itself returns amount unchanged.
func (d *Directory) Convert(amount float64, from, to core.Currency) (float64, error) {
	if !from.IsSupported() || !to.IsSupported() {
		return 0, core.UnsupportedCurrency(from, to)
	}
	if from == to {
		return amount, nil
	}

	d.mu.RLock()
	src, tgt := d.rates[from], d.rates[to]
	d.mu.RUnlock()

	return (amount / src) * tgt, nil
}
