package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/quoteflow/internal/catalog/domain"
	"github.com/smallbiznis/quoteflow/internal/catalog/repository"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CatalogItem{}, &domain.Instruction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	}), db, clk
}

func TestRemember_LatestDescriptionWins(t *testing.T) {
	svc, db, clk := setupCatalogService(t)
	ctx := context.Background()

	require.NoError(t, svc.Remember(ctx, []domain.Entry{{Item: " Widget ", Description: "steel"}}))
	clk.Advance(time.Hour)
	require.NoError(t, svc.Remember(ctx, []domain.Entry{{Item: "Widget", Description: "brass"}}))

	var items []domain.CatalogItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, "brass", items[0].Description)
	assert.True(t, items[0].LastUsed.Equal(clk.Now()))

	instructions, err := svc.ListInstructions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"brass", "steel"}, instructions)
}

func TestRemember_SkipsBlankParts(t *testing.T) {
	svc, db, _ := setupCatalogService(t)

	require.NoError(t, svc.Remember(context.Background(), []domain.Entry{
		{Item: "", Description: "install on site"},
		{Item: "Bolt", Description: "  "},
		{Item: " ", Description: ""},
	}))

	var catalogCount, instructionCount int64
	require.NoError(t, db.Model(&domain.CatalogItem{}).Count(&catalogCount).Error)
	require.NoError(t, db.Model(&domain.Instruction{}).Count(&instructionCount).Error)
	assert.Equal(t, int64(1), catalogCount)
	assert.Equal(t, int64(1), instructionCount)
}

func TestRemember_ReportsOversizedEntries(t *testing.T) {
	svc, db, _ := setupCatalogService(t)

	err := svc.Remember(context.Background(), []domain.Entry{
		{Item: strings.Repeat("x", 201)},
		{Item: "Nut"},
	})
	assert.ErrorIs(t, err, domain.ErrTooLong)

	var count int64
	require.NoError(t, db.Model(&domain.CatalogItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSuggest_FiltersByQuery(t *testing.T) {
	svc, _, _ := setupCatalogService(t)
	ctx := context.Background()

	require.NoError(t, svc.Remember(ctx, []domain.Entry{
		{Item: "Copper Wire", Description: "per metre"},
		{Item: "Steel Pipe", Description: "wire brushed"},
	}))

	got, err := svc.Suggest(ctx, "WIRE")
	require.NoError(t, err)
	require.Len(t, got.Catalog, 1)
	assert.Equal(t, "Copper Wire", got.Catalog[0].Name)
	assert.Equal(t, []string{"wire brushed"}, got.Instructions)
}
