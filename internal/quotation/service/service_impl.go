package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	catalogdomain "github.com/smallbiznis/quoteflow/internal/catalog/domain"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/smallbiznis/quoteflow/internal/config"
	"github.com/smallbiznis/quoteflow/internal/observability/metrics"
	"github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/internal/quotation/format"
	"github.com/smallbiznis/quoteflow/pkg/db"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Settings *config.SettingsHolder
	Repo     domain.Repository
	Buyers   buyerdomain.Service
	Catalog  catalogdomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	settings *config.SettingsHolder
	repo     domain.Repository
	buyers   buyerdomain.Service
	catalog  catalogdomain.Service
	metrics  *metrics.Metrics
	suffix   format.SuffixFunc
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("quotation.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		settings: p.Settings,
		repo:     p.Repo,
		buyers:   p.Buyers,
		catalog:  p.Catalog,
		metrics:  p.Metrics,
		suffix:   format.RandomSuffix,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Quotation, error) {
	lines, err := calculateLines(req.Items)
	if err != nil {
		return domain.Quotation{}, err
	}

	settings := s.settings.Get().Quotation
	currency, err := normalizeCurrency(req.Currency, settings.Currency)
	if err != nil {
		return domain.Quotation{}, err
	}

	var buyer *buyerdomain.Buyer
	if strings.TrimSpace(req.BuyerID) != "" {
		existing, err := s.buyers.GetByID(ctx, req.BuyerID)
		if err != nil {
			return domain.Quotation{}, err
		}
		buyer = &existing
	}

	now := s.clock.Now()
	quotation := domain.Quotation{
		ID:         s.genID.Generate(),
		CreatedBy:  strings.TrimSpace(req.Owner),
		Notes:      strings.TrimSpace(req.Notes),
		Currency:   currency,
		IncludeTax: boolOr(req.IncludeTax, true),
		TaxRate:    decimal.NewFromFloat(settings.TaxRate),
		ValidUntil: validUntil(now, intOr(req.ValidityDays, settings.ValidityDays)),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if buyer == nil {
			resolved, err := s.buyers.Resolve(ctx, tx, req.Buyer)
			if err != nil {
				return err
			}
			buyer = &resolved
		}
		quotation.BuyerID = buyer.ID

		code, err := s.nextCode(ctx, tx, now, settings)
		if err != nil {
			return err
		}
		quotation.Code = code

		if err := s.repo.Insert(ctx, tx, &quotation); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateCode
			}
			return err
		}

		return s.writeItems(ctx, tx, &quotation, lines)
	})
	if err != nil {
		return domain.Quotation{}, err
	}

	quotation.Buyer = buyer
	s.remember(ctx, lines)
	s.metrics.QuotationSaved("create")
	s.log.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("code", quotation.Code),
		zap.Int("items", len(quotation.Items)),
		zap.String("total", quotation.Total.StringFixed(2)),
	)
	return quotation, nil
}

// Replace swaps the full item set of a quotation and recomputes its totals.
// The code and creation time are kept; seller documents are dropped.
func (s *Service) Replace(ctx context.Context, req domain.ReplaceRequest) (domain.Quotation, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Quotation{}, err
	}
	lines, err := calculateLines(req.Items)
	if err != nil {
		return domain.Quotation{}, err
	}

	settings := s.settings.Get().Quotation
	var quotation *domain.Quotation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if quotation == nil {
			return domain.ErrNotFound
		}

		if req.Notes != nil {
			quotation.Notes = strings.TrimSpace(*req.Notes)
		}
		if strings.TrimSpace(req.Currency) != "" {
			currency, err := normalizeCurrency(req.Currency, settings.Currency)
			if err != nil {
				return err
			}
			quotation.Currency = currency
		}
		if req.IncludeTax != nil {
			quotation.IncludeTax = *req.IncludeTax
		}
		if req.ValidityDays != nil {
			quotation.ValidUntil = validUntil(quotation.CreatedAt, *req.ValidityDays)
		}
		quotation.UpdatedAt = s.clock.Now().UTC()

		if err := s.repo.DeleteSellerQuotes(ctx, tx, quotation.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteItems(ctx, tx, quotation.ID); err != nil {
			return err
		}
		return s.writeItems(ctx, tx, quotation, lines)
	})
	if err != nil {
		return domain.Quotation{}, err
	}

	s.remember(ctx, lines)
	s.metrics.QuotationSaved("replace")
	return s.withBuyer(ctx, *quotation), nil
}

// Copy creates a new quotation for the same buyer with the source's notes,
// currency, tax flag and items.
func (s *Service) Copy(ctx context.Context, req domain.CopyRequest) (domain.Quotation, error) {
	source, err := s.findSource(ctx, req.Source)
	if err != nil {
		return domain.Quotation{}, err
	}

	items, err := s.repo.ListItems(ctx, s.db, source.ID)
	if err != nil {
		return domain.Quotation{}, err
	}
	rows := make([]domain.ItemInput, 0, len(items))
	for _, item := range items {
		rows = append(rows, domain.ItemInput{
			Item:        item.ItemName,
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
		})
	}

	includeTax := source.IncludeTax
	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		owner = source.CreatedBy
	}
	return s.Create(ctx, domain.CreateRequest{
		BuyerID:    source.BuyerID.String(),
		Items:      rows,
		Notes:      source.Notes,
		Currency:   source.Currency,
		IncludeTax: &includeTax,
		Owner:      owner,
	})
}

func (s *Service) GetByID(ctx context.Context, value string) (domain.Quotation, error) {
	id, err := parseID(value)
	if err != nil {
		return domain.Quotation{}, err
	}
	quotation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Quotation{}, err
	}
	if quotation == nil {
		return domain.Quotation{}, domain.ErrNotFound
	}
	return s.load(ctx, *quotation)
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Quotation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Quotation{}, domain.ErrNotFound
	}
	quotation, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Quotation{}, err
	}
	if quotation == nil {
		return domain.Quotation{}, domain.ErrNotFound
	}
	return s.load(ctx, *quotation)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		Query:       strings.TrimSpace(req.Query),
		Owner:       strings.TrimSpace(req.Owner),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if strings.TrimSpace(req.BuyerID) != "" {
		buyerID, err := parseID(req.BuyerID)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.BuyerID = buyerID.Int64()
	}

	rows, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListResponse{}, err
	}
	rows, pageInfo := pagination.Trim(rows, req.Pagination)
	if rows == nil {
		rows = []domain.Summary{}
	}
	return domain.ListResponse{PageInfo: pageInfo, Quotations: rows}, nil
}

// Delete removes a quotation with its items and seller documents.
func (s *Service) Delete(ctx context.Context, value string) error {
	id, err := parseID(value)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.DeleteSellerQuotes(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteItems(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.metrics.QuotationSaved("delete")
	return nil
}

// Recompute rewrites the totals of a quotation from its persisted items.
func (s *Service) Recompute(ctx context.Context, value string) (domain.Quotation, error) {
	id, err := parseID(value)
	if err != nil {
		return domain.Quotation{}, err
	}

	var quotation *domain.Quotation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if quotation == nil {
			return domain.ErrNotFound
		}
		quotation.UpdatedAt = s.clock.Now().UTC()
		return s.recompute(ctx, tx, quotation)
	})
	if err != nil {
		return domain.Quotation{}, err
	}
	return s.withBuyer(ctx, *quotation), nil
}

func (s *Service) writeItems(ctx context.Context, tx *gorm.DB, quotation *domain.Quotation, lines []domain.LineItem) error {
	items := make([]domain.Item, 0, len(lines))
	for i, line := range lines {
		items = append(items, domain.Item{
			ID:          s.genID.Generate(),
			QuotationID: quotation.ID,
			Position:    i + 1,
			ItemName:    line.Item,
			Description: line.Description,
			Quantity:    line.Quantity,
			Rate:        line.Rate,
			Amount:      line.Amount,
		})
	}
	if err := s.repo.InsertItems(ctx, tx, items); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return s.recompute(ctx, tx, quotation)
}

// recompute derives totals from the items as stored, never from the input.
func (s *Service) recompute(ctx context.Context, tx *gorm.DB, quotation *domain.Quotation) error {
	items, err := s.repo.ListItems(ctx, tx, quotation.ID)
	if err != nil {
		return err
	}

	totals := ComputeTotals(items, quotation.IncludeTax, quotation.TaxRate)
	quotation.Subtotal = totals.Subtotal
	quotation.Tax = totals.Tax
	quotation.Total = totals.Total
	quotation.Items = items

	return s.repo.UpdateHeader(ctx, tx, quotation)
}

// nextCode generates a code not yet taken. The unique index still guards
// against a concurrent writer picking the same code.
func (s *Service) nextCode(ctx context.Context, tx *gorm.DB, now time.Time, settings config.QuotationSettings) (string, error) {
	for attempt := 0; attempt < settings.CodeAttempts; attempt++ {
		code := format.FormatCode(settings.CodeTemplate, now, s.suffix)
		exists, err := s.repo.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.log.Debug("quotation code collision", zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	return "", domain.ErrCodeExhausted
}

func (s *Service) findSource(ctx context.Context, value string) (*domain.Quotation, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.ErrNotFound
	}

	source, err := s.repo.FindByCode(ctx, s.db, value)
	if err != nil {
		return nil, err
	}
	if source != nil {
		return source, nil
	}

	id, err := snowflake.ParseString(value)
	if err != nil || id == 0 {
		return nil, domain.ErrNotFound
	}
	source, err = s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrNotFound
	}
	return source, nil
}

func (s *Service) load(ctx context.Context, quotation domain.Quotation) (domain.Quotation, error) {
	items, err := s.repo.ListItems(ctx, s.db, quotation.ID)
	if err != nil {
		return domain.Quotation{}, err
	}
	quotation.Items = items
	return s.withBuyer(ctx, quotation), nil
}

func (s *Service) withBuyer(ctx context.Context, quotation domain.Quotation) domain.Quotation {
	buyer, err := s.buyers.GetByID(ctx, quotation.BuyerID.String())
	if err != nil {
		if !errors.Is(err, buyerdomain.ErrNotFound) {
			s.log.Warn("load buyer failed", zap.String("quotation_id", quotation.ID.String()), zap.Error(err))
		}
		return quotation
	}
	quotation.Buyer = &buyer
	return quotation
}

// remember records suggestions after the quotation is committed. Failures
// never undo the quotation.
func (s *Service) remember(ctx context.Context, lines []domain.LineItem) {
	entries := make([]catalogdomain.Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, catalogdomain.Entry{Item: line.Item, Description: line.Description})
	}
	if err := s.catalog.Remember(ctx, entries); err != nil {
		s.log.Warn("record suggestions failed", zap.Error(err))
	}
}

func normalizeCurrency(value, fallback string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(value))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(fallback))
	}
	if currency == "" {
		return domain.DefaultCurrency, nil
	}
	if len(currency) > 8 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	return currency, nil
}

func validUntil(from time.Time, days int) *time.Time {
	if days <= 0 {
		return nil
	}
	deadline := from.UTC().AddDate(0, 0, days)
	return &deadline
}

func boolOr(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}

func intOr(value *int, def int) int {
	if value == nil {
		return def
	}
	return *value
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
