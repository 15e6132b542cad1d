package rates

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/core"
)

func TestDirectory_StartsWithDefaults(t *testing.T) {
	d := NewDirectory()

	assert.Equal(t, core.DefaultRates(), d.Rates())
	assert.False(t, d.Initialized())
}

func TestDirectory_RatesIsDefensiveCopy(t *testing.T) {
	d := NewDirectory()

	snapshot := d.Rates()
	snapshot[core.GBP] = 99

	assert.Equal(t, 1.8, d.Rates()[core.GBP])
}

func TestDirectory_SetRatesRejectsPartialSnapshot(t *testing.T) {
	d := NewDirectory()
	before := d.Rates()

	err := d.SetRates(core.RateSnapshot{core.USD: 1, core.GBP: 1.8, core.EURO: 0.7})

	var e *core.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, core.KindInvalidRateValues, e.Kind)
	assert.Equal(t, "ILS", e.Key)
	assert.Equal(t, before, d.Rates())
	assert.False(t, d.Initialized())
}

func TestDirectory_SetRatesRejectsBadValues(t *testing.T) {
	for _, bad := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		d := NewDirectory()
		candidate := core.RateSnapshot{core.USD: 1, core.GBP: bad, core.EURO: 0.9, core.ILS: 3.7}

		err := d.SetRates(candidate)

		assert.ErrorIs(t, err, core.ErrInvalidRateValues, "value %v", bad)
		assert.Equal(t, core.DefaultRates(), d.Rates())
	}
}

func TestDirectory_SetRatesDropsExtraCodes(t *testing.T) {
	d := NewDirectory()
	candidate := core.RateSnapshot{core.USD: 1, core.GBP: 0.8, core.EURO: 0.9, core.ILS: 3.7, "JPY": 150}

	require.NoError(t, d.SetRates(candidate))

	got := d.Rates()
	assert.Len(t, got, 4)
	assert.Equal(t, 0.8, got[core.GBP])
	assert.True(t, d.Initialized())

	candidate[core.GBP] = 5
	assert.Equal(t, 0.8, d.Rates()[core.GBP], "caller map must not alias the snapshot")
}

func TestDirectory_ConvertIdentity(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.SetRates(core.RateSnapshot{core.USD: 1, core.GBP: 0.7913, core.EURO: 0.9271, core.ILS: 3.7123}))

	for _, c := range core.SupportedCurrencies {
		for _, a := range []float64{0.01, 1, 3.3333, 1234567.89} {
			got, err := d.Convert(a, c, c)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		}
	}
}

func TestDirectory_ConvertRoundTrip(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.SetRates(core.RateSnapshot{core.USD: 1, core.GBP: 0.7913, core.EURO: 0.9271, core.ILS: 3.7123}))

	for _, from := range core.SupportedCurrencies {
		for _, to := range core.SupportedCurrencies {
			a := 42.37
			there, err := d.Convert(a, from, to)
			require.NoError(t, err)
			back, err := d.Convert(there, to, from)
			require.NoError(t, err)
			assert.InEpsilon(t, a, back, 1e-9, "%s -> %s", from, to)
		}
	}
}

func TestDirectory_ConvertFormula(t *testing.T) {
	d := NewDirectory()

	got, err := d.Convert(20, core.GBP, core.USD)
	require.NoError(t, err)
	assert.InDelta(t, 20/1.8, got, 1e-12)

	got, err = d.Convert(10, core.USD, core.ILS)
	require.NoError(t, err)
	assert.InDelta(t, 34.0, got, 1e-12)
}

func TestDirectory_ConvertUnsupported(t *testing.T) {
	d := NewDirectory()

	_, err := d.Convert(1, "JPY", core.USD)
	assert.ErrorIs(t, err, core.ErrUnsupportedCurrency)

	_, err = d.Convert(1, core.USD, "EUR")
	assert.ErrorIs(t, err, core.ErrUnsupportedCurrency)

	_, err = d.Convert(1, "JPY", "JPY")
	assert.ErrorIs(t, err, core.ErrUnsupportedCurrency)
}

func TestDirectory_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	d := NewDirectory()
	a := core.RateSnapshot{core.USD: 1, core.GBP: 2, core.EURO: 2, core.ILS: 2}
	b := core.RateSnapshot{core.USD: 1, core.GBP: 4, core.EURO: 4, core.ILS: 4}
	require.NoError(t, d.SetRates(a))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if (i+j)%2 == 0 {
					_ = d.SetRates(a)
				} else {
					_ = d.SetRates(b)
				}
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s := d.Rates()
				if !reflect.DeepEqual(s, a) && !reflect.DeepEqual(s, b) {
					t.Errorf("torn snapshot observed: %v", s)
					return
				}
			}
		}()
	}
	wg.Wait()
}
