package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/quoteflow/internal/export"
	"github.com/smallbiznis/quoteflow/internal/outbound"
	"github.com/smallbiznis/quoteflow/internal/render"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	"go.uber.org/zap"
)

type generateDocumentsRequest struct {
	SellerIDs []string `json:"seller_ids"`
	Style     string   `json:"style"`
}

type shareRequest struct {
	Phone   *string `json:"phone"`
	Message string  `json:"message"`
	Open    bool    `json:"open"`
}

func (s *Server) GenerateDocuments(c *gin.Context) {
	var req generateDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paths, err := s.sellerQuoteSvc.GenerateForSellers(c.Request.Context(), c.Param("id"), req.SellerIDs, req.Style)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"paths": paths}})
}

func (s *Server) ListDocuments(c *gin.Context) {
	resp, err := s.sellerQuoteSvc.ListByQuotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ExportQuotation downloads the quotation as a workbook, headed by the seller
// given in seller_id or by the main seller.
func (s *Server) ExportQuotation(c *gin.Context) {
	ctx := c.Request.Context()
	quotation, err := s.findQuotation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var seller sellerdomain.Seller
	if id := strings.TrimSpace(c.Query("seller_id")); id != "" {
		seller, err = s.sellerSvc.GetByID(ctx, id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
	} else {
		sellers, err := s.sellerSvc.List(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if len(sellers) > 0 {
			seller = sellers[0]
		}
	}

	content, err := export.QuotationWorkbook(render.NewInput(seller, quotation))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(quotation.Code)+`"`)
	c.Data(http.StatusOK, export.ContentType, content)
}

// ShareQuotation builds a chat link for the buyer. The phone defaults to the
// buyer's and the message lists the generated documents. A failure to open
// the link is reported as opened=false.
func (s *Server) ShareQuotation(c *gin.Context) {
	var req shareRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	open, err := parseOptionalBool(c.Query("open"))
	if err != nil {
		AbortWithError(c, newValidationError("open", "invalid_open", "invalid open"))
		return
	}
	if open != nil {
		req.Open = *open
	}

	ctx := c.Request.Context()
	quotation, err := s.findQuotation(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	phone := ""
	if req.Phone != nil {
		phone = *req.Phone
	} else if quotation.Buyer != nil {
		phone = quotation.Buyer.Phone
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		docs, err := s.sellerQuoteSvc.ListByQuotation(ctx, quotation.ID.String())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		paths := make([]string, 0, len(docs))
		for _, doc := range docs {
			paths = append(paths, doc.PDFPath)
		}
		message = outbound.DefaultMessage(quotation, quotation.Buyer, paths)
	}

	if !req.Open {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"link": s.sharer.Link(phone, message), "opened": false}})
		return
	}

	link, err := s.sharer.Share(ctx, phone, message)
	if err != nil {
		s.log.Warn("share link not opened", zap.String("quotation_id", quotation.ID.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"link": link, "opened": err == nil}})
}
