package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
)

const DefaultCurrency = "INR"

type Quotation struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"type:varchar(40);not null;uniqueIndex" json:"code"`
	BuyerID    snowflake.ID    `gorm:"not null;index" json:"buyer_id"`
	CreatedBy  string          `gorm:"type:varchar(150);not null;default:'';index" json:"created_by"`
	Notes      string          `gorm:"type:text;not null;default:''" json:"notes"`
	Currency   string          `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	IncludeTax bool            `gorm:"not null;default:true" json:"include_tax"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"tax_rate"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`

	Items []Item             `gorm:"-" json:"items,omitempty"`
	Buyer *buyerdomain.Buyer `gorm:"-" json:"buyer,omitempty"`
}

func (Quotation) TableName() string { return "quotations" }

// Item is one persisted line of a quotation. Amount is always
// round(Quantity * Rate) to two decimals.
type Item struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	QuotationID snowflake.ID    `gorm:"not null;index" json:"quotation_id"`
	Position    int             `gorm:"not null" json:"position"`
	ItemName    string          `gorm:"type:varchar(200);not null;default:''" json:"item_name"`
	Description string          `gorm:"type:varchar(500);not null;default:''" json:"description"`
	Quantity    decimal.Decimal `gorm:"column:qty;type:decimal(12,3);not null" json:"qty"`
	Rate        decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

func (Item) TableName() string { return "quotation_items" }

// Totals are derived from the persisted items.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Summary is a quotation row as shown in listings.
type Summary struct {
	Quotation `gorm:"embedded"`
	BuyerName string `json:"buyer_name"`
}
