package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	buyerdomain "github.com/smallbiznis/quoteflow/internal/buyer/domain"
	catalogdomain "github.com/smallbiznis/quoteflow/internal/catalog/domain"
	"github.com/smallbiznis/quoteflow/internal/money"
	quotationdomain "github.com/smallbiznis/quoteflow/internal/quotation/domain"
	"github.com/smallbiznis/quoteflow/internal/render"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	sellerquotedomain "github.com/smallbiznis/quoteflow/internal/sellerquote/domain"
	"github.com/smallbiznis/quoteflow/internal/storage"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// validationErrors are reported as 400 with their own code.
var validationErrors = []error{
	ErrInvalidRequest,
	quotationdomain.ErrInvalidID,
	quotationdomain.ErrInvalidCurrency,
	quotationdomain.ErrInvalidQuantity,
	quotationdomain.ErrNoValidItems,
	quotationdomain.ErrItemTooLong,
	money.ErrInvalidAmount,
	money.ErrNonFinite,
	buyerdomain.ErrInvalidID,
	buyerdomain.ErrInvalidName,
	sellerdomain.ErrInvalidID,
	sellerdomain.ErrInvalidName,
	styledomain.ErrInvalidCode,
	catalogdomain.ErrTooLong,
	sellerquotedomain.ErrMissingSellers,
	sellerquotedomain.ErrMissingStyle,
}

var notFoundErrors = []error{
	ErrNotFound,
	quotationdomain.ErrNotFound,
	buyerdomain.ErrNotFound,
	sellerdomain.ErrNotFound,
	styledomain.ErrNotFound,
	sellerquotedomain.ErrStyleNotFound,
	storage.ErrNotFound,
	gorm.ErrRecordNotFound,
}

var conflictErrors = []error{
	quotationdomain.ErrDuplicateCode,
	quotationdomain.ErrCodeExhausted,
	sellerquotedomain.ErrDuplicateSellerQuote,
	sellerquotedomain.ErrSellerCodeExhausted,
	buyerdomain.ErrInUse,
	sellerdomain.ErrInUse,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code, ok := matchSentinel(err, validationErrors); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	var sellerMissing *sellerquotedomain.SellerNotFoundError
	var renderErr *sellerquotedomain.RenderError
	switch {
	case errors.As(err, &sellerMissing):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "seller " + sellerMissing.ID + " not found",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictCode(err),
		}
	case errors.Is(err, render.ErrUnsupportedStyle):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "render_error",
			Message: "unsupported style",
		}
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError, errorPayload{
			Type:    "render_error",
			Message: "document for seller " + renderErr.SellerID + " could not be produced",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog names the error kind for request logs.
func classifyErrorForLog(err error) string {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError && payload.Type == "internal_error" {
		return "internal"
	}
	return payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func matchSentinel(err error, sentinels []error) (string, bool) {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func isNotFoundError(err error) bool {
	_, ok := matchSentinel(err, notFoundErrors)
	return ok
}

func isConflictError(err error) bool {
	_, ok := matchSentinel(err, conflictErrors)
	return ok
}

func conflictCode(err error) string {
	code, _ := matchSentinel(err, conflictErrors)
	return code
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "no_valid_items", "invalid_quantity", "invalid_amount", "non_finite_amount", "item_too_long":
		return "items"
	case "missing_sellers":
		return "seller_ids"
	case "missing_style", "invalid_style_code":
		return "style"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "no_valid_items":
		return "at least one valid item is required"
	case "item_too_long":
		return "item name or description is too long"
	case "missing_sellers":
		return "select at least one seller"
	case "missing_style":
		return "select a style"
	default:
		return "invalid value"
	}
}
