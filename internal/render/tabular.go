package render

import (
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/quoteflow/internal/money"
)

// theme is what separates the tabular variants from each other.
type theme struct {
	family     string
	titleSize  float64
	accent     *props.Color
	headerFill *props.Color
	headerText *props.Color
	tableEdge  border.Type
	metaEdge   border.Type
}

var (
	classicTheme = theme{
		family:     fontfamily.Arial,
		titleSize:  18,
		headerFill: lightGrey,
		tableEdge:  border.Full,
		metaEdge:   border.None,
	}
	modernTheme = theme{
		family:     fontfamily.Helvetica,
		titleSize:  22,
		accent:     &props.Color{Red: 33, Green: 64, Blue: 154},
		headerFill: &props.Color{Red: 33, Green: 64, Blue: 154},
		headerText: white,
		tableEdge:  border.Bottom,
		metaEdge:   border.None,
	}
	boxedTheme = theme{
		family:     fontfamily.Arial,
		titleSize:  18,
		headerFill: &props.Color{Red: 230, Green: 230, Blue: 230},
		tableEdge:  border.Full,
		metaEdge:   border.Full,
	}
	minimalTheme = theme{
		family:    fontfamily.Courier,
		titleSize: 14,
		tableEdge: border.Bottom,
		metaEdge:  border.None,
	}
)

// tabularStyle prints the header, a metadata grid and a single-cell
// "item: description" table.
type tabularStyle struct {
	code  string
	theme theme
}

func newTabularStyle(code string, t theme) tabularStyle {
	return tabularStyle{code: code, theme: t}
}

func (s tabularStyle) Code() string { return s.code }

func (s tabularStyle) Build(m core.Maroto, in Input) {
	s.header(m, in.Seller)
	s.meta(m, in)
	s.items(m, in)
	s.totals(m, in)
	if in.Quotation.Notes != "" {
		m.AddAutoRow(text.NewCol(12, "Notes: "+in.Quotation.Notes, s.text(9, props.Text{Top: 4})))
	}
}

func (s tabularStyle) text(size float64, p props.Text) props.Text {
	p.Family = s.theme.family
	p.Size = size
	return p
}

func (s tabularStyle) cell(edge border.Type, fill *props.Color) *props.Cell {
	c := &props.Cell{BackgroundColor: fill}
	if edge != border.None {
		c.BorderType = edge
		c.BorderColor = darkGrey
		c.BorderThickness = 0.2
	}
	return c
}

func (s tabularStyle) header(m core.Maroto, seller Seller) {
	logo := hasLogo(seller)
	width := 8
	if logo {
		width = 6
	}
	identity := col.New(width).Add(
		text.New(seller.Name, s.text(14, props.Text{Style: fontstyle.Bold, Color: s.theme.accent})),
	)
	top := 7.0
	for _, extra := range []string{seller.Address, contactLine(seller.Phone, seller.Email), identityLine(seller)} {
		if extra == "" {
			continue
		}
		identity.Add(text.New(extra, s.text(9, props.Text{Top: top})))
		top += 5
	}

	cols := []core.Col{identity, text.NewCol(4, "QUOTATION", s.text(s.theme.titleSize, props.Text{
		Style: fontstyle.Bold,
		Align: align.Right,
		Color: s.theme.accent,
	}))}
	if logo {
		cols = append([]core.Col{image.NewFromFileCol(2, seller.LogoPath, props.Rect{Percent: 85})}, cols...)
	}
	m.AddRow(top+4, cols...)
	m.AddRow(4, line.NewCol(12, props.Line{Color: s.theme.accent, Thickness: 0.3}))
}

func (s tabularStyle) meta(m core.Maroto, in Input) {
	q := in.Quotation
	validUntil := "-"
	if q.ValidUntil != nil {
		validUntil = q.ValidUntil.Format("02-Jan-2006")
	}

	rows := [][4]string{
		{"Quotation #", q.Code, "Date", q.CreatedAt.Format("02-Jan-2006")},
		{"Buyer", valueOr(in.Buyer.Name, "-"), "Valid Until", validUntil},
		{"Phone", valueOr(in.Buyer.Phone, "-"), "Email", valueOr(in.Buyer.Email, "-")},
	}
	label := s.text(9, props.Text{Style: fontstyle.Bold, Top: 1.5, Left: 1.5})
	value := s.text(9, props.Text{Top: 1.5, Left: 1.5})
	style := s.cell(s.theme.metaEdge, nil)
	for _, r := range rows {
		m.AddRows(row.New(7).Add(
			text.NewCol(2, r[0], label),
			text.NewCol(4, r[1], value),
			text.NewCol(2, r[2], label),
			text.NewCol(4, r[3], value),
		).WithStyle(style))
	}
	if in.Buyer.Address != "" {
		m.AddAutoRow(
			text.NewCol(2, "Address", label),
			text.NewCol(10, in.Buyer.Address, value),
		).WithStyle(style)
	}
	m.AddRow(4)
}

func (s tabularStyle) items(m core.Maroto, in Input) {
	head := s.text(9, props.Text{Style: fontstyle.Bold, Top: 1.5, Left: 1.5, Right: 1.5, Color: s.theme.headerText})
	m.AddRows(row.New(7).Add(
		text.NewCol(6, "Description", head),
		text.NewCol(2, "Qty", withAlign(head, align.Right)),
		text.NewCol(2, "Rate", withAlign(head, align.Right)),
		text.NewCol(2, "Amount", withAlign(head, align.Right)),
	).WithStyle(s.cell(s.theme.tableEdge, s.theme.headerFill)))

	body := s.text(9, props.Text{Top: 1.5, Left: 1.5, Right: 1.5, Bottom: 1.5})
	style := s.cell(s.theme.tableEdge, nil)
	for _, item := range in.Items {
		m.AddAutoRow(
			text.NewCol(6, describe(item), body),
			text.NewCol(2, money.FormatQuantity(item.Quantity), withAlign(body, align.Right)),
			text.NewCol(2, money.FormatAmount(item.Rate), withAlign(body, align.Right)),
			text.NewCol(2, money.FormatAmount(item.Amount), withAlign(body, align.Right)),
		).WithStyle(style)
	}
}

func (s tabularStyle) totals(m core.Maroto, in Input) {
	label := s.text(9, props.Text{Align: align.Right, Top: 2})
	value := s.text(9, props.Text{Align: align.Right, Top: 2, Right: 1.5})

	lines := [][2]string{
		{"Subtotal", amount(in.Quotation, in.Totals.Subtotal)},
		{taxCaption(in.Quotation), amount(in.Quotation, in.Totals.Tax)},
	}
	for _, l := range lines {
		m.AddRow(7, col.New(6), text.NewCol(3, l[0], label), text.NewCol(3, l[1], value))
	}
	m.AddRows(row.New(8).Add(
		col.New(6),
		text.NewCol(3, "Total", withStyle(label, fontstyle.Bold)),
		text.NewCol(3, amount(in.Quotation, in.Totals.Total), withStyle(value, fontstyle.Bold)),
	))
}

func describe(item Item) string {
	switch {
	case item.Name != "" && item.Description != "":
		return item.Name + ": " + item.Description
	case item.Name != "":
		return item.Name
	default:
		return item.Description
	}
}
