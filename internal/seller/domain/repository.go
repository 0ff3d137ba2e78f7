package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, seller *Seller) error
	Update(ctx context.Context, db *gorm.DB, seller *Seller) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Seller, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Seller, error)
	List(ctx context.Context, db *gorm.DB) ([]*Seller, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountSellerQuotes(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
