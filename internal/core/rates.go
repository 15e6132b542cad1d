package core

import "math"

// RateSnapshot maps a currency to the number of its units worth 1 USD.
type RateSnapshot map[Currency]float64

// DefaultRates is the built-in snapshot used until a source is resolved.
func DefaultRates() RateSnapshot {
	return RateSnapshot{USD: 1, GBP: 1.8, EURO: 0.7, ILS: 3.4}
}

// Validate checks that every required code carries a finite positive rate.
func (s RateSnapshot) Validate() error {
	for _, code := range RequiredRateKeys {
		v, ok := s[code]
		if !ok {
			return InvalidRateValues(string(code), nil)
		}
		if !ValidRate(v) {
			return InvalidRateValues(string(code), v)
		}
	}
	return nil
}

// Clone returns a copy restricted to the required codes.
func (s RateSnapshot) Clone() RateSnapshot {
	out := make(RateSnapshot, len(RequiredRateKeys))
	for _, code := range RequiredRateKeys {
		if v, ok := s[code]; ok {
			out[code] = v
		}
	}
	return out
}

func ValidRate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
