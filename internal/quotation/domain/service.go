package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
)

// ItemInput is a raw row as typed by the user.
type ItemInput struct {
	Item        string          `json:"item"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
}

// LineItem is a row accepted by the calculator.
type LineItem struct {
	Item        string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

type CreateRequest struct {
	// BuyerID selects an existing buyer. When empty the buyer is resolved by
	// the trimmed Buyer.Name.
	BuyerID string
	Buyer   buyerdomain.Info
	Items   []ItemInput
	Notes   string
	// Currency defaults to the configured currency.
	Currency string
	// IncludeTax defaults to true.
	IncludeTax *bool
	// ValidityDays defaults to the configured value; zero or less means the
	// quotation never expires.
	ValidityDays *int
	Owner        string
}

type ReplaceRequest struct {
	ID           string
	Items        []ItemInput
	Notes        *string
	Currency     string
	IncludeTax   *bool
	ValidityDays *int
}

type CopyRequest struct {
	// Source is a quotation id or code; codes match case-insensitively.
	Source string
	Owner  string
}

type ListRequest struct {
	Query       string
	BuyerID     string
	Owner       string
	CreatedFrom *time.Time
	// CreatedTo is exclusive.
	CreatedTo *time.Time
	pagination.Pagination
}

type ListFilter struct {
	Query       string
	BuyerID     int64
	Owner       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Quotations []Summary `json:"quotations"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Quotation, error)
	Replace(ctx context.Context, req ReplaceRequest) (Quotation, error)
	Copy(ctx context.Context, req CopyRequest) (Quotation, error)
	GetByID(ctx context.Context, id string) (Quotation, error)
	GetByCode(ctx context.Context, code string) (Quotation, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Delete(ctx context.Context, id string) error
	Recompute(ctx context.Context, id string) (Quotation, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrNoValidItems    = errors.New("no_valid_items")
	ErrItemTooLong     = errors.New("item_too_long")
	ErrNotFound        = errors.New("quotation_not_found")
	ErrDuplicateCode   = errors.New("duplicate_quotation_code")
	ErrCodeExhausted   = errors.New("quotation_code_exhausted")
)
