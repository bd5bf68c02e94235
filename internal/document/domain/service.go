package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
)

// DocumentInput is the header part of a create or update. Dates are
// YYYY-MM-DD or RFC 3339. TermDate maps to due_date or expiry_date.
type DocumentInput struct {
	Number         string          `json:"number"`
	CustomerID     string          `json:"customer_id"`
	IssueDate      string          `json:"issue_date"`
	TermDate       string          `json:"-"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         Status          `json:"status"`
	Notes          string          `json:"notes"`
}

type ItemInput struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type ListRequest struct {
	Page       int
	Limit      int
	Search     string
	Status     string
	CustomerID string
}

type ListResponse struct {
	Documents  []Document          `json:"documents"`
	Pagination pagination.PageInfo `json:"pagination"`
}

// ConvertRequest names the invoice issued from a quotation. Empty dates fall
// back to today and to no due date.
type ConvertRequest struct {
	Number    string `json:"number"`
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
}

type Service interface {
	// Create writes the header, its items and, for invoices, the stock
	// movements in one transaction.
	Create(ctx context.Context, req DocumentInput, items []ItemInput) (Document, error)
	// Update replaces the header. An empty status keeps the stored one. A
	// non-nil items slice replaces the whole item set; invoices then reverse
	// the old lines' stock and issue the new ones.
	Update(ctx context.Context, id string, req DocumentInput, items []ItemInput) (Document, error)
	// Delete removes the document. Invoices put their stock back first.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Document, error)
}

type InvoiceService interface {
	Service
}

type QuotationService interface {
	Service
	// Convert issues an invoice from the quotation and marks it accepted, in one transaction.
	Convert(ctx context.Context, id string, req ConvertRequest) (Document, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidNumber    = errors.New("invalid_number")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidDate      = errors.New("invalid_date")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidProduct   = errors.New("invalid_product")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidItem      = errors.New("invalid_item")
	ErrEmptyItems       = errors.New("empty_items")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrProductNotFound  = errors.New("product_not_found")
	ErrDuplicateNumber  = errors.New("number_exists")
	ErrNotFound         = errors.New("not_found")
	ErrNotConvertible   = errors.New("quotation_not_convertible")
)
