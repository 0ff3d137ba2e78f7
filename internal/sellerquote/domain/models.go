package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	"gorm.io/gorm"
)

// SellerQuote links a quotation to the seller it was issued for, with the
// style and artifact of the most recent rendering.
type SellerQuote struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	QuotationID snowflake.ID `gorm:"not null;uniqueIndex:ux_seller_quotes_pair,priority:1" json:"quotation_id"`
	SellerID    snowflake.ID `gorm:"not null;uniqueIndex:ux_seller_quotes_pair,priority:2;index" json:"seller_id"`
	StyleID     snowflake.ID `gorm:"not null" json:"style_id"`
	StyleCode   string       `gorm:"type:varchar(50);not null" json:"style_code"`
	ArtifactKey string       `gorm:"type:varchar(500);not null" json:"artifact_key"`
	PDFPath     string       `gorm:"column:pdf_path;type:varchar(1000);not null" json:"pdf_path"`
	SellerCode  string       `gorm:"type:varchar(40);not null;uniqueIndex" json:"seller_code"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`

	Seller *sellerdomain.Seller `gorm:"-" json:"seller,omitempty"`
}

func (SellerQuote) TableName() string { return "seller_quotes" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sq *SellerQuote) error
	UpdateArtifact(ctx context.Context, db *gorm.DB, sq *SellerQuote) error
	FindByPair(ctx context.Context, db *gorm.DB, quotationID, sellerID snowflake.ID) (*SellerQuote, error)
	SellerCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	ListByQuotation(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) ([]*SellerQuote, error)
}
