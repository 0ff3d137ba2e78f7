package service

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quoteflow/internal/money"
	"github.com/smallbiznis/quoteflow/internal/quotation/domain"
)

// ComputeTotals sums persisted amounts and applies tax when included.
func ComputeTotals(items []domain.Item, includeTax bool, rate decimal.Decimal) domain.Totals {
	amounts := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, item.Amount)
	}
	subtotal := money.Sum(amounts...)

	tax := decimal.Zero
	if includeTax {
		tax = money.Multiply(subtotal, rate)
	}

	return domain.Totals{
		Subtotal: subtotal,
		Tax:      money.Round(tax),
		Total:    money.Sum(subtotal, tax),
	}
}
