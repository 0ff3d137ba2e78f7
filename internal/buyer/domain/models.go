package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// WalkInName is used when a quotation names no buyer.
const WalkInName = "Walk-in Buyer"

type Buyer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(200);not null;index" json:"name"`
	Phone     string       `gorm:"type:varchar(50);not null;default:''" json:"phone"`
	Email     string       `gorm:"type:varchar(254);not null;default:''" json:"email"`
	Address   string       `gorm:"type:text;not null;default:''" json:"address"`
	TaxID     string       `gorm:"column:gstin;type:varchar(32);not null;default:''" json:"gstin"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Buyer) TableName() string { return "buyers" }
