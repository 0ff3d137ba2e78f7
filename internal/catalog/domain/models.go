package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CatalogItem remembers an item name and the description it was last used with.
type CatalogItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(200);not null;uniqueIndex" json:"name"`
	Description string       `gorm:"type:varchar(500);not null;default:''" json:"description"`
	LastUsed    time.Time    `gorm:"not null" json:"last_used"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

// Instruction remembers a free-text description for autocompletion.
type Instruction struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Text     string       `gorm:"type:varchar(500);not null;uniqueIndex" json:"text"`
	LastUsed time.Time    `gorm:"not null" json:"last_used"`
}

func (Instruction) TableName() string { return "instructions" }

type Entry struct {
	Item        string
	Description string
}

type Suggestions struct {
	Catalog      []CatalogItem `json:"catalog"`
	Instructions []string      `json:"instructions"`
}

type Repository interface {
	UpsertCatalogItem(ctx context.Context, db *gorm.DB, item *CatalogItem) error
	UpsertInstruction(ctx context.Context, db *gorm.DB, instruction *Instruction) error
	ListCatalog(ctx context.Context, db *gorm.DB, query string, limit int) ([]CatalogItem, error)
	ListInstructions(ctx context.Context, db *gorm.DB, query string, limit int) ([]Instruction, error)
}

type Service interface {
	// Remember upserts catalog entries and instructions for the given rows.
	Remember(ctx context.Context, entries []Entry) error
	ListCatalog(ctx context.Context, query string) ([]CatalogItem, error)
	ListInstructions(ctx context.Context, query string) ([]string, error)
	Suggest(ctx context.Context, query string) (Suggestions, error)
}

var ErrTooLong = errors.New("suggestion_too_long")
