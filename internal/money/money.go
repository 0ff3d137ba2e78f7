// Package money holds the rounding and formatting rules for quotation amounts.
//
// Every stored amount carries exactly two fractional digits. Rounding is
// half away from zero: an exact half cent always moves away from zero, so
// 10.005 becomes 10.01 and -10.005 becomes -10.01.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Scale is the number of fractional digits kept for amounts.
const Scale = 2

var (
	ErrNonFinite     = errors.New("non_finite_amount")
	ErrInvalidAmount = errors.New("invalid_amount")
)

var printer = message.NewPrinter(language.English)

// Round quantizes d to two fractional digits, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// RoundFloat rounds a float using its shortest decimal representation, so
// 10.005 is treated as the literal 10.005 and not its binary approximation.
func RoundFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrNonFinite
	}
	return Round(decimal.NewFromFloat(f)), nil
}

// Multiply returns round(a*b).
func Multiply(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Sum adds the values without intermediate rounding and rounds the result.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round(total)
}

// Parse reads user input such as "1,250.50". Blank input is zero.
func Parse(raw string) (decimal.Decimal, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// FormatAmount renders a currency amount with two decimals and thousands
// separators, e.g. 1234567.5 -> "1,234,567.50".
func FormatAmount(d decimal.Decimal) string {
	rounded := Round(d)
	whole := rounded.Truncate(0)
	frac := rounded.Sub(whole).Abs().StringFixed(Scale)[1:]

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		whole = whole.Abs()
	}
	return sign + printer.Sprintf("%d", whole.IntPart()) + frac
}

// FormatQuantity renders a quantity with two decimals and no grouping.
func FormatQuantity(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
