package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
)

type createQuotationRequest struct {
	BuyerID      string                      `json:"buyer_id"`
	Buyer        buyerdomain.Info            `json:"buyer"`
	Items        []quotationdomain.ItemInput `json:"items"`
	Notes        string                      `json:"notes"`
	Currency     string                      `json:"currency"`
	IncludeTax   *bool                       `json:"include_tax"`
	ValidityDays *int                        `json:"validity_days"`
	Owner        string                      `json:"owner"`
}

type replaceQuotationRequest struct {
	Items        []quotationdomain.ItemInput `json:"items"`
	Notes        *string                     `json:"notes"`
	Currency     string                      `json:"currency"`
	IncludeTax   *bool                       `json:"include_tax"`
	ValidityDays *int                        `json:"validity_days"`
}

type copyQuotationRequest struct {
	Owner string `json:"owner"`
}

func (s *Server) CreateQuotation(c *gin.Context) {
	var req createQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.Create(c.Request.Context(), quotationdomain.CreateRequest{
		BuyerID:      strings.TrimSpace(req.BuyerID),
		Buyer:        req.Buyer,
		Items:        req.Items,
		Notes:        req.Notes,
		Currency:     req.Currency,
		IncludeTax:   req.IncludeTax,
		ValidityDays: req.ValidityDays,
		Owner:        req.Owner,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListQuotations(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Query       string `form:"q"`
		BuyerID     string `form:"buyer_id"`
		Owner       string `form:"owner"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}

	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.quotationSvc.List(c.Request.Context(), quotationdomain.ListRequest{
		Query:       strings.TrimSpace(query.Query),
		BuyerID:     strings.TrimSpace(query.BuyerID),
		Owner:       strings.TrimSpace(query.Owner),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
		Pagination:  query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetQuotationByID accepts either the numeric id or the quotation code.
func (s *Server) GetQuotationByID(c *gin.Context) {
	resp, err := s.findQuotation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReplaceQuotation(c *gin.Context) {
	var req replaceQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.Replace(c.Request.Context(), quotationdomain.ReplaceRequest{
		ID:           c.Param("id"),
		Items:        req.Items,
		Notes:        req.Notes,
		Currency:     req.Currency,
		IncludeTax:   req.IncludeTax,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteQuotation(c *gin.Context) {
	if err := s.quotationSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CopyQuotation(c *gin.Context) {
	var req copyQuotationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.quotationSvc.Copy(c.Request.Context(), quotationdomain.CopyRequest{
		Source: c.Param("id"),
		Owner:  req.Owner,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) findQuotation(c *gin.Context) (quotationdomain.Quotation, error) {
	value := strings.TrimSpace(c.Param("id"))
	resp, err := s.quotationSvc.GetByID(c.Request.Context(), value)
	if err == nil {
		return resp, nil
	}
	if !errors.Is(err, quotationdomain.ErrInvalidID) {
		return quotationdomain.Quotation{}, err
	}
	return s.quotationSvc.GetByCode(c.Request.Context(), value)
}
