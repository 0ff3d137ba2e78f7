package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/seller/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, seller *domain.Seller) error {
	return db.WithContext(ctx).Create(seller).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, seller *domain.Seller) error {
	return db.WithContext(ctx).
		Model(&domain.Seller{}).
		Where("id = ?", seller.ID).
		Updates(map[string]any{
			"name":       seller.Name,
			"legal_name": seller.LegalName,
			"address":    seller.Address,
			"phone":      seller.Phone,
			"email":      seller.Email,
			"gstin":      seller.GSTIN,
			"pan":        seller.PAN,
			"logo_path":  seller.LogoPath,
			"is_main":    seller.IsMain,
			"updated_at": seller.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Seller, error) {
	var seller domain.Seller
	err := db.WithContext(ctx).Where("id = ?", id).First(&seller).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*domain.Seller, error) {
	var sellers []*domain.Seller
	if len(ids) == 0 {
		return sellers, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&sellers).Error
	if err != nil {
		return nil, err
	}
	return sellers, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Seller, error) {
	var sellers []*domain.Seller
	err := db.WithContext(ctx).
		Order("is_main desc, name asc, id asc").
		Find(&sellers).Error
	if err != nil {
		return nil, err
	}
	return sellers, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Seller{}).Error
}

func (r *repo) CountSellerQuotes(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM seller_quotes WHERE seller_id = ?`, id).
		Scan(&count).Error
	return count, err
}
