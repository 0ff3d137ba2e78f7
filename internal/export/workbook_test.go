package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quoteflow/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestQuotationWorkbook(t *testing.T) {
	in := render.Input{
		Seller: render.Seller{Name: "MainCo Pvt Ltd", GSTIN: "27ABCDE1234F1Z5"},
		Quotation: render.Quotation{
			Code:      "Q260314-AB12CD",
			CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			Currency:  "INR",
			Notes:     "Delivery in 7 days",
		},
		Buyer: render.Buyer{Name: "Acme"},
		Items: []render.Item{
			{Name: "Widget", Description: "Blue", Quantity: decimal.NewFromInt(2), Rate: decimal.RequireFromString("50"), Amount: decimal.RequireFromString("100")},
			{Name: "A", Quantity: decimal.NewFromInt(1), Rate: decimal.RequireFromString("10.005"), Amount: decimal.RequireFromString("10.01")},
		},
		Totals: render.Totals{
			Subtotal: decimal.RequireFromString("110.01"),
			Tax:      decimal.RequireFromString("19.80"),
			Total:    decimal.RequireFromString("129.81"),
		},
	}

	content, err := QuotationWorkbook(in)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	assert.Equal(t, []string{"Seller", "MainCo Pvt Ltd"}, rows[0])
	assert.Equal(t, []string{"Quotation #", "Q260314-AB12CD"}, rows[2])

	// meta block, blank row, table header
	assert.Equal(t, []string{"#", "Item", "Description", "Qty", "Rate", "Amount"}, rows[10])
	assert.Equal(t, "Widget", rows[11][1])
	assert.Equal(t, "Blue", rows[11][2])

	raw, err := f.GetCellValue(SheetName, "F13", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "10.01", raw)

	total, err := f.GetCellValue(SheetName, "E17")
	require.NoError(t, err)
	assert.Equal(t, "Total", total)

	notes, err := f.GetCellValue(SheetName, "B19")
	require.NoError(t, err)
	assert.Equal(t, "Delivery in 7 days", notes)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Q1.xlsx", Filename("Q1"))
}
