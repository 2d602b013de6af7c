package account

import (
	"math"
	"strings"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/shopspring/decimal"
)

const (
	// amountScale is the number of fractional digits an amount may carry.
	amountScale = 2
	// maxExponent bounds the exponent accepted before any arithmetic runs.
	maxExponent = 18
)

var (
	errInvalidAmount = domain.NewError(domain.ErrValidation, "Invalid amount.")
	// amountLimit is the first magnitude with more than 15 integer digits.
	amountLimit = decimal.New(1, 15)
)

// ParseAmount parses user-supplied text into an amount. Empty or
// non-numeric input fails with a validation error, as do amounts with more
// than two decimals or more than 15 integer digits; the sign is checked by
// the operation that uses the amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}
	return checkAmount(d)
}

// AmountFromFloat converts a float amount under the same rules as
// ParseAmount, rejecting NaN and infinities.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, errInvalidAmount
	}
	return checkAmount(decimal.NewFromFloat(f))
}

// ExponentInRange reports whether d can be compared or rescaled cheaply.
// Comparing 1e-999999999 with 1 would build a billion-digit coefficient, so
// parsed input must pass this check before any arithmetic.
func ExponentInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent
}

func checkAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if !ExponentInRange(d) {
		return decimal.Zero, errInvalidAmount
	}
	if !d.Equal(d.Truncate(amountScale)) {
		return decimal.Zero, errInvalidAmount
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return decimal.Zero, errInvalidAmount
	}
	return d, nil
}
