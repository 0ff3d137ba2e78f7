package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/smallbiznis/quoteflow/internal/config"
	"github.com/smallbiznis/quoteflow/internal/observability/metrics"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/internal/quotation/format"
	"github.com/smallbiznis/quoteflow/internal/render"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	"github.com/smallbiznis/quoteflow/internal/sellerquote/domain"
	"github.com/smallbiznis/quoteflow/internal/storage"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	"github.com/smallbiznis/quoteflow/pkg/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Settings   *config.SettingsHolder
	Repo       domain.Repository
	Quotations quotationdomain.Service
	Sellers    sellerdomain.Service
	Styles     styledomain.Service
	Renderer   *render.Renderer
	Store      storage.Store
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	settings   *config.SettingsHolder
	repo       domain.Repository
	quotations quotationdomain.Service
	sellers    sellerdomain.Service
	styles     styledomain.Service
	renderer   *render.Renderer
	store      storage.Store
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	suffix     format.SuffixFunc
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("sellerquote.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		settings:   p.Settings,
		repo:       p.Repo,
		quotations: p.Quotations,
		sellers:    p.Sellers,
		styles:     p.Styles,
		renderer:   p.Renderer,
		store:      p.Store,
		metrics:    p.Metrics,
		tracer:     otel.Tracer("quoteflow/sellerquote"),
		suffix:     format.RandomSuffix,
	}
}

// rendered is one seller's document held in memory until it is stored.
type rendered struct {
	seller   sellerdomain.Seller
	doc      render.Document
	location string
}

func (s *Service) GenerateForSellers(ctx context.Context, quotationID string, sellerIDs []string, styleCode string) (paths []string, err error) {
	ctx, span := s.tracer.Start(ctx, "sellerquote.GenerateForSellers", trace.WithAttributes(
		attribute.String("quotation_id", quotationID),
		attribute.Int("sellers", len(sellerIDs)),
		attribute.String("style", styleCode),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fan-out failed")
		}
		span.End()
	}()

	if len(sellerIDs) == 0 {
		return nil, domain.ErrMissingSellers
	}
	styleCode = strings.ToLower(strings.TrimSpace(styleCode))
	if styleCode == "" {
		return nil, domain.ErrMissingStyle
	}

	quotation, err := s.quotations.GetByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	style, err := s.styles.GetByCode(ctx, styleCode)
	if err != nil {
		if errors.Is(err, styledomain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrStyleNotFound, styleCode)
		}
		return nil, err
	}

	sellers, err := s.resolveSellers(ctx, sellerIDs)
	if err != nil {
		s.metrics.FanOutFailed("seller_not_found")
		return nil, err
	}

	docs, err := s.renderAll(ctx, quotation, sellers, style.Code)
	if err != nil {
		s.metrics.FanOutFailed("render")
		return nil, err
	}

	recorded, err := s.recordedKeys(ctx, quotation.ID)
	if err != nil {
		return nil, err
	}

	written, err := s.storeAll(ctx, docs, recorded)
	if err != nil {
		s.metrics.FanOutFailed("store")
		return nil, err
	}

	if err := s.record(ctx, quotation, style, docs); err != nil {
		s.discard(ctx, written, recorded)
		s.metrics.FanOutFailed("persist")
		return nil, err
	}

	paths = make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.location)
		s.metrics.DocumentRendered(style.Code)
	}
	s.log.Info("seller documents generated",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("code", quotation.Code),
		zap.String("style", style.Code),
		zap.Int("documents", len(paths)),
	)
	return paths, nil
}

func (s *Service) ListByQuotation(ctx context.Context, quotationID string) ([]domain.SellerQuote, error) {
	quotation, err := s.quotations.GetByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByQuotation(ctx, s.db, quotation.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SellerQuote, 0, len(items))
	for _, item := range items {
		seller, err := s.sellers.GetByID(ctx, item.SellerID.String())
		if err == nil {
			item.Seller = &seller
		} else if !errors.Is(err, sellerdomain.ErrNotFound) {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, nil
}

// resolveSellers loads every requested seller before anything is rendered.
func (s *Service) resolveSellers(ctx context.Context, ids []string) ([]sellerdomain.Seller, error) {
	sellers := make([]sellerdomain.Seller, 0, len(ids))
	for _, id := range ids {
		seller, err := s.sellers.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sellerdomain.ErrNotFound) || errors.Is(err, sellerdomain.ErrInvalidID) {
				return nil, &domain.SellerNotFoundError{ID: strings.TrimSpace(id)}
			}
			return nil, err
		}
		sellers = append(sellers, seller)
	}
	return sellers, nil
}

func (s *Service) renderAll(ctx context.Context, quotation quotationdomain.Quotation, sellers []sellerdomain.Seller, styleCode string) ([]rendered, error) {
	if !s.renderer.Supports(styleCode) {
		return nil, &domain.RenderError{
			SellerID: sellers[0].ID.String(),
			Err:      fmt.Errorf("%w: %q", render.ErrUnsupportedStyle, styleCode),
		}
	}

	docs := make([]rendered, len(sellers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.settings.Get().Render.Parallelism))
	for i, seller := range sellers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := s.tracer.Start(gctx, "render.Document", trace.WithAttributes(
				attribute.String("seller_id", seller.ID.String()),
				attribute.String("style", styleCode),
			))
			defer span.End()

			doc, err := s.renderer.Render(render.NewInput(seller, quotation), styleCode)
			if err != nil {
				span.RecordError(err)
				return &domain.RenderError{SellerID: seller.ID.String(), Err: err}
			}
			docs[i] = rendered{seller: seller, doc: doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// recordedKeys returns the artifact keys existing SellerQuote rows of the
// quotation point at.
func (s *Service) recordedKeys(ctx context.Context, quotationID snowflake.ID) (map[string]struct{}, error) {
	items, err := s.repo.ListByQuotation(ctx, s.db, quotationID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(items))
	for _, item := range items {
		keys[item.ArtifactKey] = struct{}{}
	}
	return keys, nil
}

// storeAll writes every document. On failure the artifacts written by this
// call are removed again, except keys a recorded SellerQuote still points at.
func (s *Service) storeAll(ctx context.Context, docs []rendered, recorded map[string]struct{}) ([]string, error) {
	written := make([]string, 0, len(docs))
	for i := range docs {
		location, err := s.store.Put(ctx, docs[i].doc.Path, docs[i].doc.Bytes)
		if err != nil {
			s.discard(ctx, written, recorded)
			return nil, &domain.RenderError{SellerID: docs[i].seller.ID.String(), Err: err}
		}
		docs[i].location = location
		written = append(written, docs[i].doc.Path)
	}
	return written, nil
}

func (s *Service) discard(ctx context.Context, keys []string, recorded map[string]struct{}) {
	for _, key := range keys {
		if _, ok := recorded[key]; ok {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("remove artifact failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// record upserts one SellerQuote per (quotation, seller) in a single
// transaction.
func (s *Service) record(ctx context.Context, quotation quotationdomain.Quotation, style styledomain.Style, docs []rendered) error {
	now := s.clock.Now().UTC()
	template := s.settings.Get().Quotation

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range docs {
			existing, err := s.repo.FindByPair(ctx, tx, quotation.ID, d.seller.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.StyleID = style.ID
				existing.StyleCode = style.Code
				existing.ArtifactKey = d.doc.Path
				existing.PDFPath = d.location
				existing.UpdatedAt = now
				if err := s.repo.UpdateArtifact(ctx, tx, existing); err != nil {
					return err
				}
				continue
			}

			code, err := s.nextSellerCode(ctx, tx, now, template)
			if err != nil {
				return err
			}
			sq := domain.SellerQuote{
				ID:          s.genID.Generate(),
				QuotationID: quotation.ID,
				SellerID:    d.seller.ID,
				StyleID:     style.ID,
				StyleCode:   style.Code,
				ArtifactKey: d.doc.Path,
				PDFPath:     d.location,
				SellerCode:  code,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repo.Insert(ctx, tx, &sq); err != nil {
				if db.IsDuplicateKeyErr(err) {
					return domain.ErrDuplicateSellerQuote
				}
				return err
			}
		}
		return nil
	})
}

func (s *Service) nextSellerCode(ctx context.Context, tx *gorm.DB, now time.Time, settings config.QuotationSettings) (string, error) {
	for attempt := 0; attempt < settings.CodeAttempts; attempt++ {
		code := format.FormatCode(settings.SellerCodeTemplate, now, s.suffix)
		exists, err := s.repo.SellerCodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.log.Debug("seller code collision", zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	return "", domain.ErrSellerCodeExhausted
}
