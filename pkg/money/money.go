// Package money normalizes the locale-formatted price strings the upstream
// catalog serves ("2.300,50") into canonical amounts and keeps cart arithmetic
// exact.
package money

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize converts a possibly locale-formatted price string into a float64.
// Both "." and "," present: "." is a thousands separator and "," the decimal
// separator. Only ",": it is the decimal separator. Anything unparseable
// yields 0; a malformed price is never an error.
func Normalize(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")
	switch {
	case hasDot && hasComma:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// FromAny normalizes a price that may arrive as a JSON number or string.
func FromAny(v any) float64 {
	switch price := v.(type) {
	case nil:
		return 0
	case float64:
		return price
	case float32:
		return float64(price)
	case int:
		return float64(price)
	case int64:
		return float64(price)
	case json.Number:
		return Normalize(price.String())
	case string:
		return Normalize(price)
	default:
		return 0
	}
}

// Subtotal multiplies a unit price by a quantity without binary-float drift.
func Subtotal(unitPrice float64, quantity int) float64 {
	result, _ := decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Float64()
	return result
}

// Sum adds amounts exactly and returns the float64 total.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(decimal.NewFromFloat(amount))
	}
	result, _ := total.Float64()
	return result
}
