package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quoteflow/internal/money"
)

var (
	lightGrey = &props.Color{Red: 211, Green: 211, Blue: 211}
	darkGrey  = &props.Color{Red: 90, Green: 90, Blue: 90}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var hundred = decimal.NewFromInt(100)

func taxPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).Round(2).String()
}

// taxCaption labels the tax line. Quotations without tax still print it at
// zero.
func taxCaption(q Quotation) string {
	if !q.IncludeTax {
		return q.TaxLabel + " (not applied)"
	}
	return fmt.Sprintf("%s (%s%%)", q.TaxLabel, taxPercent(q.TaxRate))
}

func amount(q Quotation, d decimal.Decimal) string {
	if q.Currency == "" {
		return money.FormatAmount(d)
	}
	return q.Currency + " " + money.FormatAmount(d)
}

func identityLine(s Seller) string {
	var parts []string
	if s.GSTIN != "" {
		parts = append(parts, "GSTIN: "+s.GSTIN)
	}
	if s.PAN != "" {
		parts = append(parts, "PAN: "+s.PAN)
	}
	return strings.Join(parts, "   ")
}

func contactLine(phone, email string) string {
	var parts []string
	if phone != "" {
		parts = append(parts, "Phone: "+phone)
	}
	if email != "" {
		parts = append(parts, "Email: "+email)
	}
	return strings.Join(parts, "  |  ")
}

// hasLogo reports whether the seller logo can be read from disk.
func hasLogo(s Seller) bool {
	if strings.TrimSpace(s.LogoPath) == "" {
		return false
	}
	info, err := os.Stat(s.LogoPath)
	return err == nil && !info.IsDir()
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
