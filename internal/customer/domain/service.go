package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
)

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	TaxID   string `json:"tax_id"`
}

type ListCustomerRequest struct {
	Page   int
	Limit  int
	Search string
}

type ListCustomerResponse struct {
	Customers  []Customer          `json:"customers"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	Create(ctx context.Context, req CustomerInput) (Customer, error)
	Update(ctx context.Context, id string, req CustomerInput) (Customer, error)
	// Delete refuses with *usageguard.InUseError while documents reference the customer.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	Usage(ctx context.Context, id string) (usageguard.Usage, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrDuplicate    = errors.New("customer_email_exists")
	ErrNotFound     = errors.New("not_found")
)
