package normalize

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// pick returns the first non-empty value among the candidate columns.
func pick(row map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func pickString(row map[string]any, fallback string, keys ...string) string {
	v, ok := pick(row, keys...)
	if !ok {
		return fallback
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s)
	}
	// sheets occasionally hand back numeric codes
	if d, ok := toDecimal(v); ok {
		return d.String()
	}
	return fallback
}

// toDecimal coerces a raw cell into a decimal. Unparsable values report
// ok=false so callers can substitute zero instead of failing the row.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case float32:
		return decimal.NewFromFloat(float64(t)), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func pickDecimal(row map[string]any, keys ...string) decimal.Decimal {
	v, ok := pick(row, keys...)
	if !ok {
		return decimal.Zero
	}
	d, ok := toDecimal(v)
	if !ok {
		return decimal.Zero
	}
	return d
}

func pickFloat(row map[string]any, keys ...string) float64 {
	d := pickDecimal(row, keys...)
	f, _ := d.Float64()
	return f
}
