package domain

import (
	"context"
	"errors"
)

type UpsertRequest struct {
	Name      string `json:"name"`
	LegalName string `json:"legal_name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	GSTIN     string `json:"gstin"`
	PAN       string `json:"pan"`
	LogoPath  string `json:"logo_path"`
	IsMain    bool   `json:"is_main"`
}

type Service interface {
	Create(ctx context.Context, req UpsertRequest) (Seller, error)
	Update(ctx context.Context, id string, req UpsertRequest) (Seller, error)
	GetByID(ctx context.Context, id string) (Seller, error)
	// List orders the main seller first, then by name.
	List(ctx context.Context) ([]Seller, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("seller_not_found")
	ErrInUse       = errors.New("seller_in_use")
)
