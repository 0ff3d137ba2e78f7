package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/quoteflow/internal/catalog/domain"
	pkgdb "github.com/smallbiznis/quoteflow/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertCatalogItem(ctx context.Context, db *gorm.DB, item *domain.CatalogItem) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "last_used"}),
		}).
		Create(item).Error
}

func (r *repo) UpsertInstruction(ctx context.Context, db *gorm.DB, instruction *domain.Instruction) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "text"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_used"}),
		}).
		Create(instruction).Error
}

func (r *repo) ListCatalog(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	stmt := db.WithContext(ctx).Model(&domain.CatalogItem{})
	if query != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?"+pkgdb.LikeEscape, pkgdb.ContainsPattern(strings.ToLower(query)))
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListInstructions(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Instruction, error) {
	var items []domain.Instruction
	stmt := db.WithContext(ctx).Model(&domain.Instruction{})
	if query != "" {
		stmt = stmt.Where("LOWER(text) LIKE ?"+pkgdb.LikeEscape, pkgdb.ContainsPattern(strings.ToLower(query)))
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Order("text asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
