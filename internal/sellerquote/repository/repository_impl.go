package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/sellerquote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sq *domain.SellerQuote) error {
	return db.WithContext(ctx).Create(sq).Error
}

func (r *repo) UpdateArtifact(ctx context.Context, db *gorm.DB, sq *domain.SellerQuote) error {
	return db.WithContext(ctx).
		Model(&domain.SellerQuote{}).
		Where("id = ?", sq.ID).
		Updates(map[string]any{
			"style_id":     sq.StyleID,
			"style_code":   sq.StyleCode,
			"artifact_key": sq.ArtifactKey,
			"pdf_path":     sq.PDFPath,
			"updated_at":   sq.UpdatedAt,
		}).Error
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, quotationID, sellerID snowflake.ID) (*domain.SellerQuote, error) {
	var sq domain.SellerQuote
	err := db.WithContext(ctx).
		Where("quotation_id = ? AND seller_id = ?", quotationID, sellerID).
		First(&sq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sq, nil
}

func (r *repo) SellerCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.SellerQuote{}).
		Where("seller_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) ListByQuotation(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) ([]*domain.SellerQuote, error) {
	var items []*domain.SellerQuote
	err := db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
