package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Style codes understood by the document renderer.
const (
	CodeMain    = "main"
	CodeClassic = "classic"
	CodeModern  = "modern"
	CodeBoxed   = "boxed"
	CodeMinimal = "minimal"
)

// Style is reference data naming one document layout.
type Style struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Title     string       `gorm:"type:varchar(100);not null" json:"title"`
	IsDefault bool         `gorm:"not null;default:false" json:"is_default"`
}

func (Style) TableName() string { return "styles" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, style *Style) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Style, error)
	FindDefault(ctx context.Context, db *gorm.DB) (*Style, error)
	List(ctx context.Context, db *gorm.DB) ([]*Style, error)
}

type Service interface {
	GetByCode(ctx context.Context, code string) (Style, error)
	Default(ctx context.Context) (Style, error)
	List(ctx context.Context) ([]Style, error)
}

var (
	ErrInvalidCode = errors.New("invalid_style_code")
	ErrNotFound    = errors.New("style_not_found")
)
