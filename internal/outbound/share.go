package outbound

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkg/browser"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	"github.com/smallbiznis/quoteflow/internal/config"
	"github.com/smallbiznis/quoteflow/internal/observability/metrics"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("outbound",
	fx.Provide(NewBrowserOpener),
	fx.Provide(NewSharer),
)

var ErrOpenFailed = errors.New("open_link_failed")

// Opener hands a link to something outside the process.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// BrowserOpener opens links in the system browser.
type BrowserOpener struct{}

func NewBrowserOpener() Opener {
	return BrowserOpener{}
}

func (BrowserOpener) Open(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return browser.OpenURL(link)
}

type SharerParams struct {
	fx.In

	Log      *zap.Logger
	Settings *config.SettingsHolder
	Opener   Opener
	Metrics  *metrics.Metrics `optional:"true"`
}

// Sharer builds chat links from the current outbound settings and
// optionally opens them.
type Sharer struct {
	log      *zap.Logger
	settings *config.SettingsHolder
	opener   Opener
	metrics  *metrics.Metrics
}

func NewSharer(p SharerParams) *Sharer {
	return &Sharer{
		log:      p.Log.Named("outbound.sharer"),
		settings: p.Settings,
		opener:   p.Opener,
		metrics:  p.Metrics,
	}
}

func (s *Sharer) formatter() Formatter {
	current := s.settings.Get().Outbound
	return NewFormatter(current.DefaultRegion, current.LinkBase)
}

// Link builds the chat link without opening it.
func (s *Sharer) Link(phone, text string) string {
	f := s.formatter()
	s.metrics.ShareLinkBuilt(f.NormalizePhone(phone) != "")
	return f.BuildLink(phone, text)
}

// Share builds the chat link and hands it to the opener.
func (s *Sharer) Share(ctx context.Context, phone, text string) (string, error) {
	link := s.Link(phone, text)
	if err := s.opener.Open(ctx, link); err != nil {
		s.log.Warn("open chat link failed", zap.Error(err))
		return link, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	return link, nil
}

// DefaultMessage is the text sent along with generated documents.
func DefaultMessage(q quotationdomain.Quotation, buyer *buyerdomain.Buyer, paths []string) string {
	name := "Customer"
	if buyer != nil && strings.TrimSpace(buyer.Name) != "" {
		name = strings.TrimSpace(buyer.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n", name)
	fmt.Fprintf(&b, "Please find your quotation(s): %s.\n", q.Code)
	b.WriteString("Saved at: \n")
	b.WriteString(strings.Join(paths, "\n"))
	b.WriteString("\n\nKindly review and let us know if you have any questions.")
	return b.String()
}
