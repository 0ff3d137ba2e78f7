package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quotation *Quotation) error
	UpdateHeader(ctx context.Context, db *gorm.DB, quotation *Quotation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quotation, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Quotation, error)
	CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Summary, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertItems(ctx context.Context, db *gorm.DB, items []Item) error
	ListItems(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) ([]Item, error)
	DeleteItems(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) error

	// DeleteSellerQuotes drops the per-seller document records of a
	// quotation; they are regenerated by the next fan-out.
	DeleteSellerQuotes(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) error
}
