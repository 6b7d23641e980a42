package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount to 2 decimal places, half away from zero.
// All fares and wallet deltas pass through here so retries recompute to the
// exact same amount.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatTaka renders an amount with the currency sign for human messages.
func FormatTaka(d decimal.Decimal) string {
	return fmt.Sprintf("৳%s", d.StringFixed(2))
}

// ParseAmount parses a positive decimal amount from client input.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	return Round2(d), nil
}
