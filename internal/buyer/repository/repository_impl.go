package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/buyer/domain"
	pkgdb "github.com/smallbiznis/quoteflow/pkg/db"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, buyer *domain.Buyer) error {
	return db.WithContext(ctx).Create(buyer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, buyer *domain.Buyer) error {
	return db.WithContext(ctx).
		Model(&domain.Buyer{}).
		Where("id = ?", buyer.ID).
		Updates(map[string]any{
			"name":       buyer.Name,
			"phone":      buyer.Phone,
			"email":      buyer.Email,
			"address":    buyer.Address,
			"gstin":      buyer.TaxID,
			"updated_at": buyer.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Buyer, error) {
	var buyer domain.Buyer
	err := db.WithContext(ctx).Where("id = ?", id).First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// FindByName returns the oldest buyer with exactly this name.
func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Buyer, error) {
	var buyer domain.Buyer
	err := db.WithContext(ctx).
		Where("name = ?", name).
		Order("id asc").
		First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Buyer, error) {
	var buyers []*domain.Buyer
	stmt := db.WithContext(ctx).Model(&domain.Buyer{})
	if filter.Name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?"+pkgdb.LikeEscape, pkgdb.ContainsPattern(filter.Name))
	}
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}
	return buyers, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Buyer{}).Error
}

func (r *repo) CountQuotations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM quotations WHERE buyer_id = ?`, id).
		Scan(&count).Error
	return count, err
}
