// Package render lays out quotations as PDF documents, one per issuing
// seller and style.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	appconfig "github.com/smallbiznis/quoteflow/internal/config"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("render",
	fx.Provide(Provide),
)

var ErrUnsupportedStyle = errors.New("unsupported_style")

// Seller is the issuing company as printed on the document.
type Seller struct {
	Name      string
	LegalName string
	Address   string
	Phone     string
	Email     string
	GSTIN     string
	PAN       string
	LogoPath  string
}

type Buyer struct {
	Name    string
	Phone   string
	Email   string
	Address string
	TaxID   string
}

type Quotation struct {
	Code       string
	CreatedAt  time.Time
	ValidUntil *time.Time
	Notes      string
	Currency   string
	IncludeTax bool
	TaxRate    decimal.Decimal
	TaxLabel   string
}

type Item struct {
	Name        string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Input is the read-only view a style lays out. Totals are taken as
// persisted; the renderer never recomputes them.
type Input struct {
	Seller    Seller
	Quotation Quotation
	Buyer     Buyer
	Items     []Item
	Totals    Totals
}

// NewInput builds the view of a persisted quotation for one seller.
func NewInput(seller sellerdomain.Seller, q quotationdomain.Quotation) Input {
	in := Input{
		Seller: Seller{
			Name:      seller.Name,
			LegalName: seller.LegalName,
			Address:   seller.Address,
			Phone:     seller.Phone,
			Email:     seller.Email,
			GSTIN:     seller.GSTIN,
			PAN:       seller.PAN,
			LogoPath:  seller.LogoPath,
		},
		Quotation: Quotation{
			Code:       q.Code,
			CreatedAt:  q.CreatedAt,
			ValidUntil: q.ValidUntil,
			Notes:      q.Notes,
			Currency:   q.Currency,
			IncludeTax: q.IncludeTax,
			TaxRate:    q.TaxRate,
		},
		Totals: Totals{
			Subtotal: q.Subtotal,
			Tax:      q.Tax,
			Total:    q.Total,
		},
	}
	if q.Buyer != nil {
		in.Buyer = Buyer{
			Name:    q.Buyer.Name,
			Phone:   q.Buyer.Phone,
			Email:   q.Buyer.Email,
			Address: q.Buyer.Address,
			TaxID:   q.Buyer.TaxID,
		}
	}
	in.Items = make([]Item, 0, len(q.Items))
	for _, item := range q.Items {
		in.Items = append(in.Items, Item{
			Name:        item.ItemName,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
		})
	}
	return in
}

// Document is a rendered PDF and the storage key it belongs under.
type Document struct {
	Bytes []byte
	Path  string
}

// StyleRenderer lays out one visual variant onto a fresh document.
type StyleRenderer interface {
	Code() string
	Build(m core.Maroto, in Input)
}

type Options struct {
	Compress bool
	TaxLabel string
}

type Renderer struct {
	opts   Options
	styles map[string]StyleRenderer
}

func New(opts Options) *Renderer {
	if strings.TrimSpace(opts.TaxLabel) == "" {
		opts.TaxLabel = "GST"
	}
	r := &Renderer{opts: opts, styles: map[string]StyleRenderer{}}
	for _, s := range []StyleRenderer{
		letterStyle{},
		newTabularStyle("classic", classicTheme),
		newTabularStyle("modern", modernTheme),
		newTabularStyle("boxed", boxedTheme),
		newTabularStyle("minimal", minimalTheme),
	} {
		r.styles[s.Code()] = s
	}
	return r
}

// Provide builds the renderer from the business settings snapshot at start.
func Provide(settings *appconfig.SettingsHolder) *Renderer {
	current := settings.Get()
	return New(Options{
		Compress: current.Render.Compress,
		TaxLabel: current.Quotation.TaxLabel,
	})
}

func (r *Renderer) Supports(code string) bool {
	_, ok := r.styles[normalizeCode(code)]
	return ok
}

// Render produces the PDF for in using the style registered under styleCode.
func (r *Renderer) Render(in Input, styleCode string) (Document, error) {
	style, ok := r.styles[normalizeCode(styleCode)]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedStyle, styleCode)
	}
	if in.Quotation.TaxLabel == "" {
		in.Quotation.TaxLabel = r.opts.TaxLabel
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    8,
		}).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithCompression(r.opts.Compress).
		Build()

	m := maroto.New(cfg)
	style.Build(m, in)

	doc, err := m.Generate()
	if err != nil {
		return Document{}, fmt.Errorf("generate %s document: %w", style.Code(), err)
	}
	return Document{
		Bytes: doc.GetBytes(),
		Path:  ArtifactPath(in.Quotation.CreatedAt, in.Quotation.Code, in.Seller.Name),
	}, nil
}

// ArtifactPath is the deterministic key of a quotation document:
// "<YYYY-MM-DD>/<code>-<SellerNameWithoutSpaces>.pdf".
func ArtifactPath(createdAt time.Time, code, sellerName string) string {
	name := strings.NewReplacer(" ", "", "/", "", "\\", "").Replace(sellerName)
	code = strings.NewReplacer("/", "", "\\", "").Replace(code)
	return fmt.Sprintf("%s/%s-%s.pdf", createdAt.Format("2006-01-02"), code, name)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
