package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Seller is a company that issues quotations.
type Seller struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(200);not null" json:"name"`
	LegalName string       `gorm:"type:varchar(255);not null;default:''" json:"legal_name"`
	Address   string       `gorm:"type:text;not null;default:''" json:"address"`
	Phone     string       `gorm:"type:varchar(50);not null;default:''" json:"phone"`
	Email     string       `gorm:"type:varchar(254);not null;default:''" json:"email"`
	GSTIN     string       `gorm:"column:gstin;type:varchar(32);not null;default:''" json:"gstin"`
	PAN       string       `gorm:"column:pan;type:varchar(16);not null;default:''" json:"pan"`
	LogoPath  string       `gorm:"type:varchar(500);not null;default:''" json:"logo_path"`
	IsMain    bool         `gorm:"not null;default:false" json:"is_main"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Seller) TableName() string { return "sellers" }
