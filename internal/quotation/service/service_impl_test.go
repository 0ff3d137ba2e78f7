package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	buyerrepository "github.com/smallbiznis/quoteflow/internal/buyer/repository"
	buyerservice "github.com/smallbiznis/quoteflow/internal/buyer/service"
	catalogdomain "github.com/smallbiznis/quoteflow/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/quoteflow/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/quoteflow/internal/catalog/service"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/smallbiznis/quoteflow/internal/config"
	"github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/internal/quotation/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     *Service
	db      *gorm.DB
	clock   *clock.FakeClock
	catalog catalogdomain.Service
}

type fixtureOption func(*Params)

func withRepo(wrap func(domain.Repository) domain.Repository) fixtureOption {
	return func(p *Params) { p.Repo = wrap(p.Repo) }
}

func withCatalog(c catalogdomain.Service) fixtureOption {
	return func(p *Params) { p.Catalog = c }
}

func withSettings(mutate func(*config.Settings)) fixtureOption {
	return func(p *Params) {
		s := config.DefaultSettings()
		mutate(&s)
		p.Settings = config.NewStaticSettings(s)
	}
}

func setupQuotationService(t *testing.T, opts ...fixtureOption) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&buyerdomain.Buyer{},
		&domain.Quotation{},
		&domain.Item{},
		&catalogdomain.CatalogItem{},
		&catalogdomain.Instruction{},
	))
	require.NoError(t, db.Exec(`CREATE TABLE seller_quotes (id INTEGER PRIMARY KEY, quotation_id INTEGER, seller_id INTEGER)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	buyers := buyerservice.New(buyerservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: buyerrepository.Provide(),
	})
	catalog := catalogservice.New(catalogservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: catalogrepository.Provide(),
	})

	params := Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clk,
		Settings: config.NewStaticSettings(config.DefaultSettings()),
		Repo:     repository.Provide(),
		Buyers:   buyers,
		Catalog:  catalog,
	}
	for _, opt := range opts {
		opt(&params)
	}

	return fixture{
		svc:     New(params).(*Service),
		db:      db,
		clock:   clk,
		catalog: catalog,
	}
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

func TestCreate_WidgetWithTax(t *testing.T) {
	f := setupQuotationService(t)

	q, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Buyer: buyerdomain.Info{Name: "Acme Stores", Phone: "9876543210"},
		Items: []domain.ItemInput{row("Widget", "", "2", "50.00")},
	})
	require.NoError(t, err)

	assert.Equal(t, "100.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "18.00", q.Tax.StringFixed(2))
	assert.Equal(t, "118.00", q.Total.StringFixed(2))
	assert.Regexp(t, `^Q260314-[0-9A-F]{6}$`, q.Code)
	assert.Equal(t, "INR", q.Currency)
	require.NotNil(t, q.ValidUntil)
	assert.True(t, q.ValidUntil.Equal(f.clock.Now().AddDate(0, 0, 7)))
	require.NotNil(t, q.Buyer)
	assert.Equal(t, "Acme Stores", q.Buyer.Name)

	stored, err := f.svc.GetByID(context.Background(), q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "118.00", stored.Total.StringFixed(2))
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "100.00", stored.Items[0].Amount.StringFixed(2))
}

func TestCreate_HalfCentRoundsUp(t *testing.T) {
	f := setupQuotationService(t)
	noTax := false

	q, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Items:      []domain.ItemInput{row("A", "", "1", "10.005")},
		IncludeTax: &noTax,
	})
	require.NoError(t, err)

	require.Len(t, q.Items, 1)
	assert.Equal(t, "10.01", q.Items[0].Amount.StringFixed(2))
	assert.Equal(t, "10.01", q.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", q.Tax.StringFixed(2))
	assert.Equal(t, "10.01", q.Total.StringFixed(2))
	assert.Equal(t, buyerdomain.WalkInName, q.Buyer.Name)
}

func TestCreate_NoValidItemsWritesNothing(t *testing.T) {
	f := setupQuotationService(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Buyer: buyerdomain.Info{Name: "Nobody"},
		Items: []domain.ItemInput{
			row("Widget", "", "0", "10"),
			row("Widget", "", "1", "-1"),
			row("", "", "1", "10"),
		},
	})
	assert.ErrorIs(t, err, domain.ErrNoValidItems)

	assert.Zero(t, count(t, f.db, "quotations"))
	assert.Zero(t, count(t, f.db, "quotation_items"))
	assert.Zero(t, count(t, f.db, "buyers"))
}

func TestCreate_RejectedRowsNeverPersisted(t *testing.T) {
	f := setupQuotationService(t)

	q, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Items: []domain.ItemInput{
			row("Widget", "", "2", "50"),
			row("Free", "", "0", "99"),
			row("Refund", "", "1", "-5"),
			row("", "  ", "3", "3"),
			row("", "labour", "1", "25.50"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), count(t, f.db, "quotation_items"))
	assert.Equal(t, "125.50", q.Subtotal.StringFixed(2))
	require.Len(t, q.Items, 2)
	assert.Equal(t, 1, q.Items[0].Position)
	assert.Equal(t, "labour", q.Items[1].Description)
}

func TestCreate_RetriesCodeCollisions(t *testing.T) {
	f := setupQuotationService(t)
	suffixes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	f.svc.suffix = func(int) string {
		next := suffixes[0]
		suffixes = suffixes[1:]
		return next
	}

	first, err := f.svc.Create(context.Background(), domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "1")}})
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), domain.CreateRequest{Items: []domain.ItemInput{row("B", "", "1", "1")}})
	require.NoError(t, err)

	assert.Equal(t, "Q260314-AAAAAA", first.Code)
	assert.Equal(t, "Q260314-BBBBBB", second.Code)
}

func TestCreate_CodeAttemptsExhausted(t *testing.T) {
	f := setupQuotationService(t, withSettings(func(s *config.Settings) {
		s.Quotation.CodeAttempts = 3
	}))
	f.svc.suffix = func(int) string { return "CCCCCC" }

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "1")}})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), domain.CreateRequest{Items: []domain.ItemInput{row("B", "", "1", "1")}})
	assert.ErrorIs(t, err, domain.ErrCodeExhausted)
	assert.Equal(t, int64(1), count(t, f.db, "quotations"))
}

// codeBlindRepo hides existing codes so the unique index is the last guard.
type codeBlindRepo struct {
	domain.Repository
}

func (codeBlindRepo) CodeExists(context.Context, *gorm.DB, string) (bool, error) {
	return false, nil
}

func TestCreate_DuplicateCodeSurfacesAsConflict(t *testing.T) {
	f := setupQuotationService(t, withRepo(func(r domain.Repository) domain.Repository {
		return codeBlindRepo{r}
	}))
	f.svc.suffix = func(int) string { return "DDDDDD" }

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "1")}})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), domain.CreateRequest{Items: []domain.ItemInput{row("B", "", "1", "1")}})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
	assert.Equal(t, int64(1), count(t, f.db, "quotations"))
}

// failingItemsRepo breaks the item insert to exercise the rollback path.
type failingItemsRepo struct {
	domain.Repository
}

var errItemsDown = errors.New("items table unavailable")

func (failingItemsRepo) InsertItems(context.Context, *gorm.DB, []domain.Item) error {
	return errItemsDown
}

func TestCreate_IsAtomic(t *testing.T) {
	f := setupQuotationService(t, withRepo(func(r domain.Repository) domain.Repository {
		return failingItemsRepo{r}
	}))

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Buyer: buyerdomain.Info{Name: "Rollback Ltd"},
		Items: []domain.ItemInput{row("Widget", "", "1", "1")},
	})
	assert.ErrorIs(t, err, errItemsDown)

	assert.Zero(t, count(t, f.db, "quotations"))
	assert.Zero(t, count(t, f.db, "buyers"))
	assert.Zero(t, count(t, f.db, "catalog_items"))
}

type brokenCatalog struct {
	catalogdomain.Service
}

func (brokenCatalog) Remember(context.Context, []catalogdomain.Entry) error {
	return errors.New("catalog offline")
}

func TestCreate_SuggestionFailureDoesNotFailQuotation(t *testing.T) {
	f := setupQuotationService(t, withCatalog(brokenCatalog{}))

	q, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Items: []domain.ItemInput{row("Widget", "steel", "1", "10")},
	})
	require.NoError(t, err)
	assert.Equal(t, "11.80", q.Total.StringFixed(2))
}

func TestCreate_RecordsSuggestions(t *testing.T) {
	f := setupQuotationService(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Items: []domain.ItemInput{row("Widget", "steel finish", "1", "10")},
	})
	require.NoError(t, err)

	catalog, err := f.catalog.ListCatalog(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "steel finish", catalog[0].Description)
}

func TestCreate_ExistingBuyerByID(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, domain.CreateRequest{
		Buyer: buyerdomain.Info{Name: "Acme"},
		Items: []domain.ItemInput{row("A", "", "1", "1")},
	})
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, domain.CreateRequest{
		BuyerID: first.BuyerID.String(),
		Items:   []domain.ItemInput{row("B", "", "1", "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, first.BuyerID, second.BuyerID)

	_, err = f.svc.Create(ctx, domain.CreateRequest{
		BuyerID: "123",
		Items:   []domain.ItemInput{row("C", "", "1", "1")},
	})
	assert.ErrorIs(t, err, buyerdomain.ErrNotFound)
}

func TestCreate_InvalidCurrency(t *testing.T) {
	f := setupQuotationService(t)

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Currency: "rs.",
		Items:    []domain.ItemInput{row("A", "", "1", "1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestReplace_SwapsItemsAndKeepsCode(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, domain.CreateRequest{
		Items: []domain.ItemInput{row("Widget", "", "2", "50"), row("Bolt", "", "10", "1.5")},
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Exec(`INSERT INTO seller_quotes (id, quotation_id, seller_id) VALUES (1, ?, 7)`, q.ID).Error)

	f.clock.Advance(time.Hour)
	notes := "Delivery in 3 days"
	replaced, err := f.svc.Replace(ctx, domain.ReplaceRequest{
		ID:    q.ID.String(),
		Items: []domain.ItemInput{row("Gadget", "", "3", "20")},
		Notes: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, q.Code, replaced.Code)
	assert.True(t, q.CreatedAt.Equal(replaced.CreatedAt))
	assert.Equal(t, "Delivery in 3 days", replaced.Notes)
	assert.Equal(t, "60.00", replaced.Subtotal.StringFixed(2))
	assert.Equal(t, "10.80", replaced.Tax.StringFixed(2))
	assert.Equal(t, "70.80", replaced.Total.StringFixed(2))
	assert.Equal(t, int64(1), count(t, f.db, "quotation_items"))
	assert.Zero(t, count(t, f.db, "seller_quotes"))
}

func TestReplace_Errors(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	_, err := f.svc.Replace(ctx, domain.ReplaceRequest{ID: "55", Items: []domain.ItemInput{row("A", "", "1", "1")}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	q, err := f.svc.Create(ctx, domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "1")}})
	require.NoError(t, err)

	_, err = f.svc.Replace(ctx, domain.ReplaceRequest{ID: q.ID.String(), Items: []domain.ItemInput{row("A", "", "0", "1")}})
	assert.ErrorIs(t, err, domain.ErrNoValidItems)
	assert.Equal(t, int64(1), count(t, f.db, "quotation_items"))
}

func TestCopy_ByCodeCaseInsensitive(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	source, err := f.svc.Create(ctx, domain.CreateRequest{
		Buyer:    buyerdomain.Info{Name: "Acme"},
		Items:    []domain.ItemInput{row("Widget", "blue", "2", "50")},
		Notes:    "Prices firm",
		Currency: "usd",
		Owner:    "asha",
	})
	require.NoError(t, err)

	copied, err := f.svc.Copy(ctx, domain.CopyRequest{Source: strings.ToLower(source.Code)})
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, copied.ID)
	assert.NotEqual(t, source.Code, copied.Code)
	assert.Equal(t, source.BuyerID, copied.BuyerID)
	assert.Equal(t, "Prices firm", copied.Notes)
	assert.Equal(t, "USD", copied.Currency)
	assert.Equal(t, "asha", copied.CreatedBy)
	assert.Equal(t, source.Total.StringFixed(2), copied.Total.StringFixed(2))
	require.Len(t, copied.Items, 1)
	assert.Equal(t, "blue", copied.Items[0].Description)

	byID, err := f.svc.Copy(ctx, domain.CopyRequest{Source: source.ID.String(), Owner: "ravi"})
	require.NoError(t, err)
	assert.Equal(t, "ravi", byID.CreatedBy)

	_, err = f.svc.Copy(ctx, domain.CopyRequest{Source: "Q000000-NOPE00"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByCode(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "1")}})
	require.NoError(t, err)

	got, err := f.svc.GetByCode(ctx, strings.ToLower(q.Code))
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)
	assert.Len(t, got.Items, 1)

	_, err = f.svc.GetByCode(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestList_Filters(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	acme, err := f.svc.Create(ctx, domain.CreateRequest{
		Buyer: buyerdomain.Info{Name: "Acme Stores"},
		Items: []domain.ItemInput{row("A", "", "1", "1")},
		Owner: "asha",
	})
	require.NoError(t, err)
	f.clock.Advance(48 * time.Hour)
	_, err = f.svc.Create(ctx, domain.CreateRequest{
		Buyer: buyerdomain.Info{Name: "Globex"},
		Items: []domain.ItemInput{row("B", "", "1", "1")},
		Owner: "ravi",
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Quotations, 2)
	assert.Equal(t, "Globex", all.Quotations[0].BuyerName)
	assert.False(t, all.HasMore)

	byName, err := f.svc.List(ctx, domain.ListRequest{Query: "acme"})
	require.NoError(t, err)
	require.Len(t, byName.Quotations, 1)
	assert.Equal(t, acme.Code, byName.Quotations[0].Code)

	byCode, err := f.svc.List(ctx, domain.ListRequest{Query: strings.ToLower(acme.Code)})
	require.NoError(t, err)
	assert.Len(t, byCode.Quotations, 1)

	byBuyer, err := f.svc.List(ctx, domain.ListRequest{BuyerID: acme.BuyerID.String()})
	require.NoError(t, err)
	assert.Len(t, byBuyer.Quotations, 1)

	byOwner, err := f.svc.List(ctx, domain.ListRequest{Owner: "ravi"})
	require.NoError(t, err)
	require.Len(t, byOwner.Quotations, 1)
	assert.Equal(t, "Globex", byOwner.Quotations[0].BuyerName)

	from := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	recent, err := f.svc.List(ctx, domain.ListRequest{CreatedFrom: &from})
	require.NoError(t, err)
	require.Len(t, recent.Quotations, 1)
	assert.Equal(t, "Globex", recent.Quotations[0].BuyerName)
}

func TestList_QueryWildcardsAreLiteral(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	for _, name := range []string{"100% Cotton Mills", "1000 Cotton Mills", "Raj_Traders", "RajXTraders"} {
		_, err := f.svc.Create(ctx, domain.CreateRequest{
			Buyer: buyerdomain.Info{Name: name},
			Items: []domain.ItemInput{row("A", "", "1", "1")},
		})
		require.NoError(t, err)
	}

	percent, err := f.svc.List(ctx, domain.ListRequest{Query: "0% cotton"})
	require.NoError(t, err)
	require.Len(t, percent.Quotations, 1)
	assert.Equal(t, "100% Cotton Mills", percent.Quotations[0].BuyerName)

	underscore, err := f.svc.List(ctx, domain.ListRequest{Query: "raj_"})
	require.NoError(t, err)
	require.Len(t, underscore.Quotations, 1)
	assert.Equal(t, "Raj_Traders", underscore.Quotations[0].BuyerName)
}

func TestDelete_Cascades(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "1"), row("B", "", "1", "1")}})
	require.NoError(t, err)
	require.NoError(t, f.db.Exec(`INSERT INTO seller_quotes (id, quotation_id, seller_id) VALUES (1, ?, 7)`, q.ID).Error)

	require.NoError(t, f.svc.Delete(ctx, q.ID.String()))
	assert.Zero(t, count(t, f.db, "quotations"))
	assert.Zero(t, count(t, f.db, "quotation_items"))
	assert.Zero(t, count(t, f.db, "seller_quotes"))

	assert.ErrorIs(t, f.svc.Delete(ctx, q.ID.String()), domain.ErrNotFound)
}

func TestRecompute_UsesPersistedItems(t *testing.T) {
	f := setupQuotationService(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, domain.CreateRequest{Items: []domain.ItemInput{row("A", "", "1", "100")}})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&domain.Item{}).Where("quotation_id = ?", q.ID).Update("amount", "200.00").Error)

	got, err := f.svc.Recompute(ctx, q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "200.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", got.Tax.StringFixed(2))
	assert.Equal(t, "236.00", got.Total.StringFixed(2))
}
