package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/smallbiznis/quoteflow/internal/config"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/internal/render"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	sellerrepo "github.com/smallbiznis/quoteflow/internal/seller/repository"
	sellerservice "github.com/smallbiznis/quoteflow/internal/seller/service"
	"github.com/smallbiznis/quoteflow/internal/sellerquote/domain"
	"github.com/smallbiznis/quoteflow/internal/sellerquote/repository"
	"github.com/smallbiznis/quoteflow/internal/storage"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	stylerepo "github.com/smallbiznis/quoteflow/internal/style/repository"
	styleservice "github.com/smallbiznis/quoteflow/internal/style/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && key == m.failOn {
		return "", errors.New("disk full")
	}
	m.objects[key] = content
	return "mem://" + key, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return content, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// fakeQuotations serves a single quotation; other methods are not used.
type fakeQuotations struct {
	quotationdomain.Service
	quotation quotationdomain.Quotation
}

func (f *fakeQuotations) GetByID(_ context.Context, id string) (quotationdomain.Quotation, error) {
	if id != f.quotation.ID.String() {
		return quotationdomain.Quotation{}, quotationdomain.ErrNotFound
	}
	return f.quotation, nil
}

type fixture struct {
	svc       *Service
	db        *gorm.DB
	store     *memStore
	sellers   sellerdomain.Service
	quotation quotationdomain.Quotation
	clock     *clock.FakeClock
}

func setupFixture(t *testing.T, parallelism int) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sellerdomain.Seller{}, &styledomain.Style{}, &domain.SellerQuote{}))
	require.NoError(t, db.Create(&styledomain.Style{ID: 1, Code: styledomain.CodeMain, Title: "Main (Letter Style)", IsDefault: true}).Error)
	require.NoError(t, db.Create(&styledomain.Style{ID: 2, Code: styledomain.CodeBoxed, Title: "Boxed"}).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	sellers := sellerservice.New(sellerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  sellerrepo.Provide(),
	})
	styles := styleservice.New(styleservice.Params{DB: db, Log: zap.NewNop(), Repo: stylerepo.Provide()})

	quotation := quotationdomain.Quotation{
		ID:         node.Generate(),
		Code:       "Q260314-AB12CD",
		Currency:   "INR",
		IncludeTax: true,
		TaxRate:    decimal.RequireFromString("0.18"),
		Subtotal:   decimal.RequireFromString("100"),
		Tax:        decimal.RequireFromString("18"),
		Total:      decimal.RequireFromString("118"),
		CreatedAt:  clk.Now(),
		Buyer:      &buyerdomain.Buyer{Name: "Acme"},
		Items: []quotationdomain.Item{{
			ItemName: "Widget",
			Quantity: decimal.NewFromInt(2),
			Rate:     decimal.RequireFromString("50"),
			Amount:   decimal.RequireFromString("100"),
		}},
	}

	settings := config.DefaultSettings()
	settings.Render.Parallelism = parallelism
	store := newMemStore()

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Settings:   config.NewStaticSettings(settings),
		Repo:       repository.Provide(),
		Quotations: &fakeQuotations{quotation: quotation},
		Sellers:    sellers,
		Styles:     styles,
		Renderer:   render.New(render.Options{}),
		Store:      store,
	}).(*Service)

	return &fixture{svc: svc, db: db, store: store, sellers: sellers, quotation: quotation, clock: clk}
}

func (f *fixture) seller(t *testing.T, name string) sellerdomain.Seller {
	t.Helper()
	seller, err := f.sellers.Create(context.Background(), sellerdomain.UpsertRequest{Name: name})
	require.NoError(t, err)
	return seller
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.SellerQuote{}).Count(&n).Error)
	return n
}

func TestGenerateForSellers_PathsInInputOrder(t *testing.T) {
	f := setupFixture(t, 1)
	ctx := context.Background()
	swift := f.seller(t, "Swift Suppliers")
	mainCo := f.seller(t, "MainCo Pvt Ltd")

	paths, err := f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), []string{swift.ID.String(), mainCo.ID.String()}, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"mem://2026-03-14/Q260314-AB12CD-SwiftSuppliers.pdf",
		"mem://2026-03-14/Q260314-AB12CD-MainCoPvtLtd.pdf",
	}, paths)
	assert.Equal(t, []string{
		"2026-03-14/Q260314-AB12CD-MainCoPvtLtd.pdf",
		"2026-03-14/Q260314-AB12CD-SwiftSuppliers.pdf",
	}, f.store.keys())

	links, err := f.svc.ListByQuotation(ctx, f.quotation.ID.String())
	require.NoError(t, err)
	require.Len(t, links, 2)
	for _, link := range links {
		assert.Regexp(t, `^SQ260314-[0-9A-F]{6}$`, link.SellerCode)
		assert.Equal(t, "main", link.StyleCode)
		require.NotNil(t, link.Seller)
	}
	assert.NotEqual(t, links[0].SellerCode, links[1].SellerCode)
}

func TestGenerateForSellers_MissingSellerWritesNothing(t *testing.T) {
	f := setupFixture(t, 1)
	existing := f.seller(t, "MainCo Pvt Ltd")
	missing := snowflake.ID(2).String()

	_, err := f.svc.GenerateForSellers(context.Background(), f.quotation.ID.String(), []string{existing.ID.String(), missing}, "main")

	var notFound *domain.SellerNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.ID)
	assert.ErrorIs(t, err, sellerdomain.ErrNotFound)
	assert.Zero(t, f.count(t))
	assert.Empty(t, f.store.keys())
}

func TestGenerateForSellers_IdempotentPerPair(t *testing.T) {
	f := setupFixture(t, 1)
	ctx := context.Background()
	seller := f.seller(t, "Allied Traders")
	ids := []string{seller.ID.String()}

	_, err := f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), ids, "main")
	require.NoError(t, err)
	first, err := f.svc.ListByQuotation(ctx, f.quotation.ID.String())
	require.NoError(t, err)
	require.Len(t, first, 1)

	f.clock.Advance(time.Hour)
	_, err = f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), ids, "Boxed")
	require.NoError(t, err)

	second, err := f.svc.ListByQuotation(ctx, f.quotation.ID.String())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].SellerCode, second[0].SellerCode)
	assert.Equal(t, "boxed", second[0].StyleCode)
	assert.Equal(t, snowflake.ID(2), second[0].StyleID)
}

func TestGenerateForSellers_DuplicateSellerIDsKeepOneRow(t *testing.T) {
	f := setupFixture(t, 1)
	seller := f.seller(t, "Allied Traders")
	id := seller.ID.String()

	paths, err := f.svc.GenerateForSellers(context.Background(), f.quotation.ID.String(), []string{id, id}, "main")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Equal(t, paths[0], paths[1])
	assert.Equal(t, int64(1), f.count(t))
}

func TestGenerateForSellers_ParallelRender(t *testing.T) {
	f := setupFixture(t, 3)
	var ids []string
	for _, name := range []string{"A One", "B Two", "C Three", "D Four"} {
		ids = append(ids, f.seller(t, name).ID.String())
	}

	paths, err := f.svc.GenerateForSellers(context.Background(), f.quotation.ID.String(), ids, "modern")
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, "mem://2026-03-14/Q260314-AB12CD-AOne.pdf", paths[0])
	assert.Equal(t, "mem://2026-03-14/Q260314-AB12CD-DFour.pdf", paths[3])
	assert.Equal(t, int64(4), f.count(t))
}

func TestGenerateForSellers_StoreFailureRemovesWrittenArtifacts(t *testing.T) {
	f := setupFixture(t, 1)
	first := f.seller(t, "Allied Traders")
	second := f.seller(t, "Swift Suppliers")
	f.store.failOn = "2026-03-14/Q260314-AB12CD-SwiftSuppliers.pdf"

	_, err := f.svc.GenerateForSellers(context.Background(), f.quotation.ID.String(), []string{first.ID.String(), second.ID.String()}, "main")

	var renderErr *domain.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, second.ID.String(), renderErr.SellerID)
	assert.Empty(t, f.store.keys())
	assert.Contains(t, f.store.deleted, "2026-03-14/Q260314-AB12CD-AlliedTraders.pdf")
	assert.Zero(t, f.count(t))
}

func TestGenerateForSellers_FailedRerunKeepsRecordedArtifacts(t *testing.T) {
	f := setupFixture(t, 1)
	ctx := context.Background()
	allied := f.seller(t, "Allied Traders")
	swift := f.seller(t, "Swift Suppliers")
	alliedKey := "2026-03-14/Q260314-AB12CD-AlliedTraders.pdf"

	_, err := f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), []string{allied.ID.String()}, "main")
	require.NoError(t, err)

	f.store.failOn = "2026-03-14/Q260314-AB12CD-SwiftSuppliers.pdf"
	_, err = f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), []string{allied.ID.String(), swift.ID.String()}, "boxed")

	var renderErr *domain.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.NotContains(t, f.store.deleted, alliedKey)
	assert.Equal(t, []string{alliedKey}, f.store.keys())

	links, err := f.svc.ListByQuotation(ctx, f.quotation.ID.String())
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "mem://"+alliedKey, links[0].PDFPath)
	assert.Equal(t, "main", links[0].StyleCode)
}

func TestGenerateForSellers_Validation(t *testing.T) {
	f := setupFixture(t, 1)
	ctx := context.Background()
	seller := f.seller(t, "Allied Traders")
	ids := []string{seller.ID.String()}

	_, err := f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), nil, "main")
	assert.ErrorIs(t, err, domain.ErrMissingSellers)

	_, err = f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), ids, " ")
	assert.ErrorIs(t, err, domain.ErrMissingStyle)

	_, err = f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), ids, "fancy")
	assert.ErrorIs(t, err, domain.ErrStyleNotFound)

	_, err = f.svc.GenerateForSellers(ctx, "12345", ids, "main")
	assert.ErrorIs(t, err, quotationdomain.ErrNotFound)

	assert.Zero(t, f.count(t))
}

func TestGenerateForSellers_SellerCodeExhausted(t *testing.T) {
	f := setupFixture(t, 1)
	ctx := context.Background()
	first := f.seller(t, "Allied Traders")
	second := f.seller(t, "Swift Suppliers")
	f.svc.suffix = func(n int) string { return "AAAAAA" }

	_, err := f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), []string{first.ID.String()}, "main")
	require.NoError(t, err)

	_, err = f.svc.GenerateForSellers(ctx, f.quotation.ID.String(), []string{second.ID.String()}, "main")
	assert.ErrorIs(t, err, domain.ErrSellerCodeExhausted)
	assert.Equal(t, int64(1), f.count(t))
	assert.Contains(t, f.store.deleted, "2026-03-14/Q260314-AB12CD-SwiftSuppliers.pdf")
}
