// Package money converts human-entered decimal amount strings to exact
// integer cent values and back. All ledger arithmetic happens in cents,
// so nothing downstream ever touches floating point.
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidFormat means the input does not look like an amount at all.
	ErrInvalidFormat = errors.New("invalid amount format")

	// ErrNotPositive means the input parsed but is zero (negative values
	// are already rejected by the pattern).
	ErrNotPositive = errors.New("amount must be greater than zero")
)

// amountPattern accepts digits optionally followed by a decimal
// separator ('.' or ',') and one or two fraction digits. No sign,
// no thousands separators, no exponent.
var amountPattern = regexp.MustCompile(`^\d+(?:[.,]\d{1,2})?$`)

// ParseCents parses an amount string like "120" or "120.50" into cents.
// Because the pattern caps fraction digits at two, scaling by 100 is
// always exact and no rounding mode ever engages. Amounts whose cent
// value does not fit in int64 are rejected rather than wrapped.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return 0, ErrInvalidFormat
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, ErrInvalidFormat
	}
	shifted := d.Shift(2)
	if !shifted.BigInt().IsInt64() {
		return 0, ErrInvalidFormat
	}
	cents := shifted.IntPart()
	if cents <= 0 {
		return 0, ErrNotPositive
	}
	return cents, nil
}

// FormatCents renders cents as a decimal string with exactly two
// fraction digits: FormatCents(12050) == "120.50".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
