package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/quoteflow/internal/style/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, style *domain.Style) error {
	return db.WithContext(ctx).Create(style).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Style, error) {
	return r.first(db.WithContext(ctx).Where("code = ?", code))
}

func (r *repo) FindDefault(ctx context.Context, db *gorm.DB) (*domain.Style, error) {
	return r.first(db.WithContext(ctx).Where("is_default = ?", true).Order("id asc"))
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Style, error) {
	var styles []*domain.Style
	err := db.WithContext(ctx).
		Order("is_default desc, id asc").
		Find(&styles).Error
	if err != nil {
		return nil, err
	}
	return styles, nil
}

func (r *repo) first(stmt *gorm.DB) (*domain.Style, error) {
	var style domain.Style
	err := stmt.First(&style).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &style, nil
}
