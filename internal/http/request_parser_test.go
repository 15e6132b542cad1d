package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/core"
)

func parseBody(t *testing.T, body string) (core.CostDraft, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/costs", strings.NewReader(body))
	return ParseCostRequest(req, httptest.NewRecorder())
}

func TestParseCostRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want core.CostDraft
	}{
		{
			name: "numeric sum",
			body: `{"sum":12.5,"currency":"EURO","category":"Food","description":"pizza"}`,
			want: core.CostDraft{Sum: 12.5, Currency: core.EURO, Category: "Food", Description: "pizza"},
		},
		{
			name: "comma decimal string",
			body: `{"sum":"7,25","currency":"ils"}`,
			want: core.CostDraft{Sum: 7.25, Currency: core.ILS},
		},
		{
			name: "EUR alias",
			body: `{"sum":"3","currency":"EUR"}`,
			want: core.CostDraft{Sum: 3, Currency: core.EURO},
		},
		{
			name: "control characters stripped",
			body: `{"sum":1,"currency":"USD","category":"  Fo\u0000od ","description":"a\u0007b"}`,
			want: core.CostDraft{Sum: 1, Currency: core.USD, Category: "Food", Description: "ab"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBody(t, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCostRequestRejectsOversizedBody(t *testing.T) {
	body := `{"sum":1,"currency":"USD","description":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	_, err := parseBody(t, body)

	var reqErr *requestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "body", reqErr.Field)
}

func TestParseCostRequestRejectsTrailingData(t *testing.T) {
	_, err := parseBody(t, `{"sum":1,"currency":"USD"}{"sum":2}`)
	var reqErr *requestError
	require.ErrorAs(t, err, &reqErr)
}

func TestParseCostRequestLongDescription(t *testing.T) {
	_, err := parseBody(t, `{"sum":1,"currency":"USD","description":"`+strings.Repeat("é", maxDescriptionLength+1)+`"}`)
	assert.ErrorIs(t, err, core.ErrInvalidCostInput)

	got, err := parseBody(t, `{"sum":1,"currency":"USD","description":"`+strings.Repeat("é", maxDescriptionLength)+`"}`)
	require.NoError(t, err)
	assert.Len(t, []rune(got.Description), maxDescriptionLength)
}

func TestParsePeriod(t *testing.T) {
	month := func(m int) *int { return &m }

	tests := []struct {
		name         string
		query        string
		requireMonth bool
		want         PeriodParams
		wantErr      bool
	}{
		{name: "defaults to current year", query: "", want: PeriodParams{Year: 2024}},
		{name: "defaults month when required", query: "", requireMonth: true, want: PeriodParams{Year: 2024, Month: month(5)}},
		{name: "explicit period", query: "year=2023&month=12", want: PeriodParams{Year: 2023, Month: month(12)}},
		{name: "year only", query: "year=2022", requireMonth: false, want: PeriodParams{Year: 2022}},
		{name: "month zero", query: "month=0", wantErr: true},
		{name: "month thirteen", query: "month=13", wantErr: true},
		{name: "year too small", query: "year=1969", wantErr: true},
		{name: "year not numeric", query: "year=twenty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParsePeriod(q, 2024, 5, tt.requireMonth)
			if tt.wantErr {
				var reqErr *requestError
				assert.ErrorAs(t, err, &reqErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCurrencyParam(t *testing.T) {
	got, err := ParseCurrencyParam(url.Values{}, core.GBP)
	require.NoError(t, err)
	assert.Equal(t, core.GBP, got)

	got, err = ParseCurrencyParam(url.Values{"currency": {"eur"}}, core.USD)
	require.NoError(t, err)
	assert.Equal(t, core.EURO, got)

	_, err = ParseCurrencyParam(url.Values{"currency": {"JPY"}}, core.USD)
	assert.ErrorIs(t, err, core.ErrUnsupportedCurrency)
}
