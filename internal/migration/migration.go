package migration

import (
	"context"
	"errors"
	"fmt"

	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	catalogdomain "github.com/smallbiznis/quoteflow/internal/catalog/domain"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	sellerquotedomain "github.com/smallbiznis/quoteflow/internal/sellerquote/domain"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	"gorm.io/gorm"
)

// Models lists every table the application owns, in creation order.
func Models() []any {
	return []any{
		&buyerdomain.Buyer{},
		&sellerdomain.Seller{},
		&styledomain.Style{},
		&catalogdomain.CatalogItem{},
		&catalogdomain.Instruction{},
		&quotationdomain.Quotation{},
		&quotationdomain.Item{},
		&sellerquotedomain.SellerQuote{},
	}
}

// RunMigrations creates or updates the schema so the application is usable
// out of the box on an empty database.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
