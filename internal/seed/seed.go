package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	"gorm.io/gorm"
)

type styleSeed struct {
	code      string
	title     string
	isDefault bool
}

var defaultStyles = []styleSeed{
	{code: styledomain.CodeMain, title: "Main (Letter Style)", isDefault: true},
	{code: styledomain.CodeClassic, title: "Classic"},
	{code: styledomain.CodeModern, title: "Modern"},
	{code: styledomain.CodeBoxed, title: "Boxed"},
	{code: styledomain.CodeMinimal, title: "Minimal"},
}

func defaultSellers(now time.Time) []sellerdomain.Seller {
	return []sellerdomain.Seller{
		{
			Name:      "MainCo Pvt Ltd",
			LegalName: "MainCo Private Limited",
			Address:   "123 MG Road, Pune, MH",
			Phone:     "+91 9876543210",
			Email:     "sales@mainco.example",
			GSTIN:     "27ABCDE1234F1Z5",
			PAN:       "ABCDE1234F",
			IsMain:    true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{Name: "Allied Traders", CreatedAt: now, UpdatedAt: now},
		{Name: "Swift Suppliers", CreatedAt: now, UpdatedAt: now},
	}
}

// EnsureReferenceData seeds the sellers on an empty database and makes sure
// every document style is present.
func EnsureReferenceData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSellersTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureStylesTx(ctx, tx, node)
	})
}

func ensureSellersTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&sellerdomain.Seller{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sellers := defaultSellers(time.Now().UTC())
	for i := range sellers {
		sellers[i].ID = node.Generate()
	}
	return tx.WithContext(ctx).Create(&sellers).Error
}

func ensureStylesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var existing []styledomain.Style
	if err := tx.WithContext(ctx).Find(&existing).Error; err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	hasDefault := false
	for _, style := range existing {
		known[style.Code] = true
		hasDefault = hasDefault || style.IsDefault
	}

	for _, seed := range defaultStyles {
		if known[seed.code] {
			continue
		}
		style := styledomain.Style{
			ID:        node.Generate(),
			Code:      seed.code,
			Title:     seed.title,
			IsDefault: seed.isDefault && !hasDefault,
		}
		if err := tx.WithContext(ctx).Create(&style).Error; err != nil {
			return err
		}
		hasDefault = hasDefault || style.IsDefault
	}
	return nil
}
