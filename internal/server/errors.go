package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/backoffice/internal/auth/domain"
	customerdomain "github.com/smallbiznis/backoffice/internal/customer/domain"
	documentdomain "github.com/smallbiznis/backoffice/internal/document/domain"
	inventorydomain "github.com/smallbiznis/backoffice/internal/inventory/domain"
	productdomain "github.com/smallbiznis/backoffice/internal/product/domain"
	profiledomain "github.com/smallbiznis/backoffice/internal/profile/domain"
	referencedomain "github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/internal/usageguard"
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

// errorResponse is the failure half of the envelope.
type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

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
		c.AbortWithStatusJSON(status, payload)
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

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var inUse *usageguard.InUseError
	if errors.As(err, &inUse) {
		return http.StatusBadRequest, errorResponse{
			Error:   "Cannot delete " + strings.ToLower(inUse.Label()),
			Message: inUse.Error(),
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
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

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{
			Error:   "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, inventorydomain.ErrInsufficientStock):
		return http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: "insufficient stock",
		}
	case isConflictError(err):
		return http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{
			Error:   "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorResponse{
			Error:   "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Error
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Error, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCustomerValidationError(err),
		isProductValidationError(err),
		isReferenceValidationError(err),
		isDocumentValidationError(err),
		isInventoryValidationError(err),
		isProfileValidationError(err),
		isAuthValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, customerdomain.ErrDuplicate),
		errors.Is(err, productdomain.ErrDuplicate),
		errors.Is(err, referencedomain.ErrDuplicate),
		errors.Is(err, documentdomain.ErrDuplicateNumber),
		errors.Is(err, documentdomain.ErrNotConvertible),
		errors.Is(err, authdomain.ErrUserExists):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, documentdomain.ErrDuplicateNumber):
		return "number already exists"
	case errors.Is(err, documentdomain.ErrNotConvertible):
		return "quotation cannot be converted"
	case errors.Is(err, customerdomain.ErrDuplicate):
		return "email already exists"
	case errors.Is(err, productdomain.ErrDuplicate):
		return "sku already exists"
	case errors.Is(err, referencedomain.ErrDuplicate):
		return "name already exists"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, referencedomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, documentdomain.ErrCustomerNotFound),
		errors.Is(err, documentdomain.ErrProductNotFound),
		errors.Is(err, inventorydomain.ErrProductNotFound),
		errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, usageguard.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
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
	case "empty_items":
		return "at least one item is required"
	case "weak_password":
		return "password is too short"
	default:
		return "invalid value"
	}
}
