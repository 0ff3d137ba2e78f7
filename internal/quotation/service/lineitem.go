package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quoteflow/internal/money"
	"github.com/smallbiznis/quoteflow/internal/quotation/domain"
)

// CalculateLine validates one raw row and prices it. Rows with a
// non-positive quantity, a negative rate, or neither an item name nor a
// description are skipped; ok is false for them.
func CalculateLine(row domain.ItemInput) (domain.LineItem, bool) {
	item := strings.TrimSpace(row.Item)
	desc := strings.TrimSpace(row.Description)

	if row.Quantity.LessThanOrEqual(decimal.Zero) {
		return domain.LineItem{}, false
	}
	if row.Rate.IsNegative() {
		return domain.LineItem{}, false
	}
	if item == "" && desc == "" {
		return domain.LineItem{}, false
	}

	return domain.LineItem{
		Item:        item,
		Description: desc,
		Quantity:    row.Quantity,
		Rate:        row.Rate,
		Amount:      money.Multiply(row.Quantity, row.Rate),
	}, true
}

// calculateLines runs CalculateLine over rows and keeps the accepted ones in
// input order.
func calculateLines(rows []domain.ItemInput) ([]domain.LineItem, error) {
	lines := make([]domain.LineItem, 0, len(rows))
	for _, row := range rows {
		line, ok := CalculateLine(row)
		if !ok {
			continue
		}
		if line.Quantity.GreaterThanOrEqual(maxQuantity) || !line.Quantity.Equal(line.Quantity.Truncate(quantityScale)) {
			return nil, domain.ErrInvalidQuantity
		}
		if line.Rate.GreaterThanOrEqual(maxAmount) || line.Amount.GreaterThanOrEqual(maxAmount) ||
			!line.Rate.Equal(line.Rate.Truncate(rateScale)) {
			return nil, money.ErrInvalidAmount
		}
		if utf8.RuneCountInString(line.Item) > maxItemLength || utf8.RuneCountInString(line.Description) > maxDescriptionLength {
			return nil, domain.ErrItemTooLong
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, domain.ErrNoValidItems
	}
	return lines, nil
}

// Column limits of quotation_items. Quantity and rate are stored at a fixed
// scale, so finer input is rejected rather than rounded by the database.
var (
	maxQuantity = decimal.New(1, 9)
	maxAmount   = decimal.New(1, 10)
)

const (
	quantityScale        = 3
	rateScale            = 4
	maxItemLength        = 200
	maxDescriptionLength = 500
)
