package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/quotation/domain"
	pkgdb "github.com/smallbiznis/quoteflow/pkg/db"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quotation *domain.Quotation) error {
	return db.WithContext(ctx).Create(quotation).Error
}

func (r *repo) UpdateHeader(ctx context.Context, db *gorm.DB, quotation *domain.Quotation) error {
	return db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("id = ?", quotation.ID).
		Updates(map[string]any{
			"notes":       quotation.Notes,
			"currency":    quotation.Currency,
			"include_tax": quotation.IncludeTax,
			"tax_rate":    quotation.TaxRate,
			"subtotal":    quotation.Subtotal,
			"tax":         quotation.Tax,
			"total":       quotation.Total,
			"valid_until": quotation.ValidUntil,
			"updated_at":  quotation.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quotation, error) {
	return first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Quotation, error) {
	return first(db.WithContext(ctx).Where("UPPER(code) = ?", strings.ToUpper(code)))
}

func (r *repo) CodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Quotation{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Summary, error) {
	var rows []domain.Summary
	stmt := db.WithContext(ctx).
		Table("quotations").
		Select("quotations.*, buyers.name AS buyer_name").
		Joins("JOIN buyers ON buyers.id = quotations.buyer_id")
	if filter.Query != "" {
		like := pkgdb.ContainsPattern(strings.ToLower(filter.Query))
		stmt = stmt.Where("(LOWER(quotations.code) LIKE ?"+pkgdb.LikeEscape+" OR LOWER(buyers.name) LIKE ?"+pkgdb.LikeEscape+")", like, like)
	}
	if filter.BuyerID != 0 {
		stmt = stmt.Where("quotations.buyer_id = ?", filter.BuyerID)
	}
	if filter.Owner != "" {
		stmt = stmt.Where("quotations.created_by = ?", filter.Owner)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("quotations.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("quotations.created_at < ?", *filter.CreatedTo)
	}
	err := page.Apply(stmt).
		Order("quotations.created_at desc, quotations.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Quotation{}).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) error {
	return db.WithContext(ctx).Where("quotation_id = ?", quotationID).Delete(&domain.Item{}).Error
}

func (r *repo) DeleteSellerQuotes(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM seller_quotes WHERE quotation_id = ?`, quotationID).Error
}

func first(stmt *gorm.DB) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := stmt.First(&quotation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}
