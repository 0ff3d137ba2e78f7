package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, buyer *Buyer) error
	Update(ctx context.Context, db *gorm.DB, buyer *Buyer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Buyer, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Buyer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Buyer, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountQuotations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
