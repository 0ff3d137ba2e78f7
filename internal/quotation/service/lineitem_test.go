package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quoteflow/internal/money"
	"github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(item, desc, qty, rate string) domain.ItemInput {
	return domain.ItemInput{
		Item:        item,
		Description: desc,
		Quantity:    decimal.RequireFromString(qty),
		Rate:        decimal.RequireFromString(rate),
	}
}

func TestCalculateLine(t *testing.T) {
	line, ok := CalculateLine(row(" Widget ", "", "2", "50.00"))
	require.True(t, ok)
	assert.Equal(t, "Widget", line.Item)
	assert.Equal(t, "100.00", line.Amount.StringFixed(2))

	line, ok = CalculateLine(row("A", "", "1", "10.005"))
	require.True(t, ok)
	assert.Equal(t, "10.01", line.Amount.StringFixed(2))

	line, ok = CalculateLine(row("", "install only", "1.5", "0"))
	require.True(t, ok)
	assert.True(t, line.Amount.IsZero())
}

func TestCalculateLine_Rejects(t *testing.T) {
	cases := map[string]domain.ItemInput{
		"zero quantity":     row("Widget", "", "0", "10"),
		"negative quantity": row("Widget", "", "-1", "10"),
		"negative rate":     row("Widget", "", "1", "-1"),
		"no text":           row("  ", " ", "1", "10"),
	}
	for name, input := range cases {
		_, ok := CalculateLine(input)
		assert.False(t, ok, name)
	}
}

func TestCalculateLines(t *testing.T) {
	lines, err := calculateLines([]domain.ItemInput{
		row("Widget", "", "2", "50"),
		row("Ghost", "", "0", "10"),
		row("Bad", "", "1", "-1"),
		row("", "", "1", "1"),
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	_, err = calculateLines([]domain.ItemInput{row("Ghost", "", "0", "10")})
	assert.ErrorIs(t, err, domain.ErrNoValidItems)

	_, err = calculateLines(nil)
	assert.ErrorIs(t, err, domain.ErrNoValidItems)

	_, err = calculateLines([]domain.ItemInput{row("Huge", "", "1000000000", "1")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = calculateLines([]domain.ItemInput{row("Pricey", "", "2", "6000000000")})
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestCalculateLines_ColumnScale(t *testing.T) {
	lines, err := calculateLines([]domain.ItemInput{row("Bolt", "", "1.500", "10.0050")})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "15.01", lines[0].Amount.StringFixed(2))

	_, err = calculateLines([]domain.ItemInput{row("Bolt", "", "1.0005", "1000")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = calculateLines([]domain.ItemInput{row("Bolt", "", "1", "10.00005")})
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestCalculateLines_TextLength(t *testing.T) {
	_, err := calculateLines([]domain.ItemInput{row(strings.Repeat("é", 200), strings.Repeat("d", 500), "1", "1")})
	require.NoError(t, err)

	_, err = calculateLines([]domain.ItemInput{row(strings.Repeat("é", 201), "", "1", "1")})
	assert.ErrorIs(t, err, domain.ErrItemTooLong)

	_, err = calculateLines([]domain.ItemInput{row("Bolt", strings.Repeat("d", 501), "1", "1")})
	assert.ErrorIs(t, err, domain.ErrItemTooLong)
}

func TestComputeTotals(t *testing.T) {
	items := []domain.Item{
		{Amount: decimal.RequireFromString("100.00")},
		{Amount: decimal.RequireFromString("0.05")},
	}
	rate := decimal.RequireFromString("0.18")

	totals := ComputeTotals(items, true, rate)
	assert.Equal(t, "100.05", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "18.01", totals.Tax.StringFixed(2))
	assert.Equal(t, "118.06", totals.Total.StringFixed(2))

	totals = ComputeTotals(items, false, rate)
	assert.Equal(t, "0.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "100.05", totals.Total.StringFixed(2))

	totals = ComputeTotals(nil, true, rate)
	assert.True(t, totals.Total.IsZero())
}
