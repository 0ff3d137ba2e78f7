package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/quoteflow/internal/money"
)

const letterIntro = "This is with reference to our discussion with you we are submitting our quotation as under. " +
	"We hope that you will find our offer most competitive and enable you to finalise your prestigious order in our favour."

// letterStyle is the default business-letter layout: centred letterhead,
// salutation, item table with description sub-rows and a signature block.
type letterStyle struct{}

func (letterStyle) Code() string { return "main" }

func (s letterStyle) Build(m core.Maroto, in Input) {
	s.letterhead(m, in.Seller)
	s.addressee(m, in)
	s.items(m, in)
	s.totals(m, in)
	s.terms(m, in)
	s.signature(m, in.Seller)
}

func (letterStyle) letterhead(m core.Maroto, seller Seller) {
	if hasLogo(seller) {
		m.AddRow(22,
			col.New(4),
			image.NewFromFileCol(4, seller.LogoPath, props.Rect{Center: true, Percent: 90}),
			col.New(4),
		)
	}

	m.AddRow(10, text.NewCol(12, "QUOTATION", props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(8, text.NewCol(12, seller.Name, props.Text{
		Size:  13,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	if seller.Address != "" {
		m.AddAutoRow(text.NewCol(12, seller.Address, props.Text{Size: 9, Align: align.Center}))
	}
	if seller.Phone != "" {
		m.AddRow(5, text.NewCol(12, "Phone No. "+seller.Phone, props.Text{Size: 9, Align: align.Center}))
	}
	if id := identityLine(seller); id != "" {
		m.AddRow(5, text.NewCol(12, id, props.Text{Size: 8, Align: align.Center}))
	}
	m.AddRow(4, line.NewCol(12, props.Line{Thickness: 0.4}))
}

func (letterStyle) addressee(m core.Maroto, in Input) {
	to := col.New(7).Add(
		text.New("To:", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.New(valueOr(in.Buyer.Name, "-"), props.Text{Size: 10, Top: 5}),
	)
	top := 10.0
	for _, extra := range []string{in.Buyer.Address, contactLine(in.Buyer.Phone, in.Buyer.Email)} {
		if extra == "" {
			continue
		}
		to.Add(text.New(extra, props.Text{Size: 9, Top: top}))
		top += 5
	}

	meta := col.New(5).Add(
		text.New("No: "+in.Quotation.Code, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.New("Date: "+in.Quotation.CreatedAt.Format("02-01-2006"), props.Text{Size: 10, Top: 5, Align: align.Right}),
	)
	if in.Quotation.ValidUntil != nil {
		meta.Add(text.New("Valid Until: "+in.Quotation.ValidUntil.Format("02-01-2006"), props.Text{
			Size:  9,
			Top:   10,
			Align: align.Right,
		}))
	}

	m.AddRow(top+6, to, meta)
	m.AddRow(8, text.NewCol(12, "Dear Sir/Madam,", props.Text{Size: 10, Top: 2}))
	m.AddAutoRow(text.NewCol(12, letterIntro, props.Text{Size: 10, Bottom: 3}))
}

func (letterStyle) items(m core.Maroto, in Input) {
	cell := &props.Cell{BorderType: border.Full, BorderColor: darkGrey, BorderThickness: 0.2}
	header := &props.Cell{BackgroundColor: lightGrey, BorderType: border.Full, BorderColor: darkGrey, BorderThickness: 0.2}
	head := props.Text{Size: 9, Style: fontstyle.Bold, Top: 1.5, Left: 1.5, Right: 1.5}

	m.AddRows(row.New(7).Add(
		text.NewCol(1, "Sr.", head),
		text.NewCol(5, "Item", head),
		text.NewCol(2, "Qty", withAlign(head, align.Right)),
		text.NewCol(2, "Rate", withAlign(head, align.Right)),
		text.NewCol(2, "Amount", withAlign(head, align.Right)),
	).WithStyle(header))

	body := props.Text{Size: 9, Top: 1.5, Left: 1.5, Right: 1.5}
	for i, item := range in.Items {
		name := item.Name
		if name == "" {
			name = item.Description
		}
		m.AddRows(row.New(7).Add(
			text.NewCol(1, strconv.Itoa(i+1), body),
			text.NewCol(5, name, props.Text{Size: 9, Style: fontstyle.Bold, Top: 1.5, Left: 1.5, Right: 1.5}),
			text.NewCol(2, money.FormatQuantity(item.Quantity), withAlign(body, align.Right)),
			text.NewCol(2, money.FormatAmount(item.Rate), withAlign(body, align.Right)),
			text.NewCol(2, money.FormatAmount(item.Amount), withAlign(body, align.Right)),
		).WithStyle(cell))

		if item.Name != "" && item.Description != "" {
			m.AddAutoRow(
				col.New(1),
				text.NewCol(11, item.Description, props.Text{Size: 8, Style: fontstyle.Italic, Left: 1.5, Bottom: 1.5}),
			).WithStyle(cell)
		}
	}
}

func (letterStyle) totals(m core.Maroto, in Input) {
	label := props.Text{Size: 10, Align: align.Right, Top: 2}
	value := props.Text{Size: 10, Align: align.Right, Top: 2, Right: 1.5}

	m.AddRow(7,
		col.New(6),
		text.NewCol(3, "Subtotal", label),
		text.NewCol(3, amount(in.Quotation, in.Totals.Subtotal), value),
	)
	m.AddRow(7,
		col.New(6),
		text.NewCol(3, "Tax "+taxCaption(in.Quotation), label),
		text.NewCol(3, amount(in.Quotation, in.Totals.Tax), value),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Total", withStyle(label, fontstyle.Bold)),
		text.NewCol(3, amount(in.Quotation, in.Totals.Total), withStyle(value, fontstyle.Bold)),
	)
}

func (letterStyle) terms(m core.Maroto, in Input) {
	m.AddRow(9, text.NewCol(12, "Terms & Conditions:", props.Text{Size: 10, Style: fontstyle.Bold, Top: 4}))

	notes := strings.TrimSpace(in.Quotation.Notes)
	if notes == "" {
		if in.Quotation.TaxRate.IsPositive() {
			notes = fmt.Sprintf("%s %s%% Extra.", in.Quotation.TaxLabel, taxPercent(in.Quotation.TaxRate))
		} else {
			notes = "-"
		}
	}
	for _, entry := range strings.Split(notes, "\n") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		m.AddAutoRow(text.NewCol(12, entry, props.Text{Size: 9}))
	}
}

func (letterStyle) signature(m core.Maroto, seller Seller) {
	m.AddRow(14, text.NewCol(12, "For "+seller.Name, props.Text{
		Size:  10,
		Style: fontstyle.Bold,
		Align: align.Right,
		Top:   8,
	}))
	m.AddRow(14, text.NewCol(12, "Authorised Signatory", props.Text{
		Size:  9,
		Align: align.Right,
		Top:   9,
	}))
}

func withAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}

func withStyle(p props.Text, s fontstyle.Type) props.Text {
	p.Style = s
	return p
}
