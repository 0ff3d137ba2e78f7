package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"gorm.io/gorm"
)

// Info carries buyer details as typed on a quotation.
type Info struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	TaxID   string `json:"gstin"`
}

type ListRequest struct {
	Name string
	pagination.Pagination
}

type ListFilter struct {
	Name string
}

type ListResponse struct {
	pagination.PageInfo
	Buyers []Buyer `json:"buyers"`
}

type UpdateRequest struct {
	ID string
	Info
}

type Service interface {
	Create(ctx context.Context, info Info) (Buyer, error)
	Update(ctx context.Context, req UpdateRequest) (Buyer, error)
	GetByID(ctx context.Context, id string) (Buyer, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Delete(ctx context.Context, id string) error

	// Resolve returns the buyer whose trimmed name matches exactly, creating
	// it from info when none exists. A nil tx uses the service connection.
	Resolve(ctx context.Context, tx *gorm.DB, info Info) (Buyer, error)
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("buyer_not_found")
	ErrInUse       = errors.New("buyer_in_use")
)
