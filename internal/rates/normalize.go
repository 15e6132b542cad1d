package rates

import (
	"encoding/json"
	"strings"

	"costmanager/internal/core"
)

// Normalize flattens upstream rate JSON into a code -> value map.
//
// Both the flat shape {"USD": 1, ...} and the nested {"rates": {...}} shape
// are accepted. Codes are upper-cased and EUR is aliased to EURO; an explicit
// EURO entry wins over the alias. Values are not validated. Anything that is
// not a JSON object normalizes to an empty map.
func Normalize(raw any) map[string]any {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return map[string]any{}
	}
	source := obj
	if nested, ok := obj["rates"].(map[string]any); ok {
		source = nested
	}

	out := make(map[string]any, len(source))
	var alias any
	hasAlias := false
	for key, value := range source {
		upper := strings.ToUpper(key)
		if upper == "EUR" {
			alias, hasAlias = value, true
			continue
		}
		out[upper] = value
	}
	if _, explicit := out[string(core.EURO)]; hasAlias && !explicit {
		out[string(core.EURO)] = alias
	}
	return out
}

// Validate extracts the four required codes from a normalized map. The
// whole map is rejected if any of them is missing, non-numeric or not a
// finite positive number.
func Validate(normalized map[string]any) (core.RateSnapshot, error) {
	snapshot := make(core.RateSnapshot, len(core.RequiredRateKeys))
	for _, code := range core.RequiredRateKeys {
		raw, ok := normalized[string(code)]
		if !ok {
			return nil, core.InvalidRateValues(string(code), nil)
		}
		v, ok := toFloat(raw)
		if !ok || !core.ValidRate(v) {
			return nil, core.InvalidRateValues(string(code), raw)
		}
		snapshot[code] = v
	}
	return snapshot, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
