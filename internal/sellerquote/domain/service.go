package domain

import (
	"context"
	"errors"
	"fmt"

	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
)

type Service interface {
	// GenerateForSellers renders the quotation once per seller and records
	// the resulting documents. Paths are returned in the order of sellerIDs.
	GenerateForSellers(ctx context.Context, quotationID string, sellerIDs []string, styleCode string) ([]string, error)
	ListByQuotation(ctx context.Context, quotationID string) ([]SellerQuote, error)
}

var (
	ErrMissingSellers       = errors.New("missing_sellers")
	ErrMissingStyle         = errors.New("missing_style")
	ErrStyleNotFound        = errors.New("style_not_found")
	ErrDuplicateSellerQuote = errors.New("duplicate_seller_quote")
	ErrSellerCodeExhausted  = errors.New("seller_code_exhausted")
)

// SellerNotFoundError names the first requested seller that does not exist.
type SellerNotFoundError struct {
	ID string
}

func (e *SellerNotFoundError) Error() string {
	return fmt.Sprintf("seller_not_found: %s", e.ID)
}

func (e *SellerNotFoundError) Unwrap() error {
	return sellerdomain.ErrNotFound
}

// RenderError reports a document that could not be produced or stored.
type RenderError struct {
	SellerID string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render document for seller %s: %v", e.SellerID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
