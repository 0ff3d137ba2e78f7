// Package export writes quotations as spreadsheets.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quoteflow/internal/render"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Quotation"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Filename is the download name of the workbook for a quotation code.
func Filename(code string) string {
	return code + ".xlsx"
}

// QuotationWorkbook lays out the header block, the item table and the
// totals of in on a single sheet.
func QuotationWorkbook(in render.Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#5A5A5A", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	amountFmt := "#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return nil, err
	}

	q := in.Quotation
	validUntil := ""
	if q.ValidUntil != nil {
		validUntil = q.ValidUntil.Format("2006-01-02")
	}
	meta := [][2]string{
		{"Seller", in.Seller.Name},
		{"GSTIN", in.Seller.GSTIN},
		{"Quotation #", q.Code},
		{"Date", q.CreatedAt.Format("2006-01-02")},
		{"Valid Until", validUntil},
		{"Buyer", in.Buyer.Name},
		{"Phone", in.Buyer.Phone},
		{"Email", in.Buyer.Email},
		{"Currency", q.Currency},
	}
	row := 1
	for _, m := range meta {
		w.set(1, row, m[0])
		w.set(2, row, m[1])
		w.style(1, row, 1, row, bold)
		row++
	}
	row++

	for i, title := range []string{"#", "Item", "Description", "Qty", "Rate", "Amount"} {
		w.set(i+1, row, title)
	}
	w.style(1, row, 6, row, header)
	row++

	first := row
	for i, item := range in.Items {
		w.set(1, row, i+1)
		w.set(2, row, item.Name)
		w.set(3, row, item.Description)
		w.number(4, row, item.Quantity, 3)
		w.number(5, row, item.Rate, 4)
		w.number(6, row, item.Amount, 2)
		row++
	}
	if row > first {
		w.style(5, first, 6, row-1, amount)
	}
	row++

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", in.Totals.Subtotal},
		{"Tax", in.Totals.Tax},
		{"Total", in.Totals.Total},
	}
	for _, t := range totals {
		w.set(5, row, t.label)
		w.number(6, row, t.value, 2)
		w.style(5, row, 5, row, bold)
		w.style(6, row, 6, row, amount)
		row++
	}
	if q.Notes != "" {
		row++
		w.set(1, row, "Notes")
		w.set(2, row, q.Notes)
		w.style(1, row, 1, row, bold)
	}

	for col, width := range map[string]float64{"A": 14, "B": 28, "C": 36, "D": 10, "E": 14, "F": 16} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, err
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so the layout code stays linear.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) set(col, row int, value any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(SheetName, w.cell(col, row), value)
}

func (w *sheetWriter) number(col, row int, d decimal.Decimal, precision int) {
	if w.err != nil {
		return
	}
	value, _ := d.Float64()
	w.err = w.f.SetCellFloat(SheetName, w.cell(col, row), value, precision, 64)
}

func (w *sheetWriter) style(fromCol, fromRow, toCol, toRow, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(SheetName, w.cell(fromCol, fromRow), w.cell(toCol, toRow), style)
}
