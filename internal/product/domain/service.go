package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
)

type ProductInput struct {
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	// StockQuantity left nil on update keeps the current level.
	StockQuantity *decimal.Decimal `json:"stock_quantity"`
	MinStock      decimal.Decimal  `json:"min_stock"`
	Status        Status           `json:"status"`
}

type ListProductRequest struct {
	Page       int
	Limit      int
	Search     string
	CategoryID string
	Status     string
	LowStock   bool
}

type ListProductResponse struct {
	Products   []Product           `json:"products"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Service interface {
	Create(ctx context.Context, req ProductInput) (Product, error)
	Update(ctx context.Context, id string, req ProductInput) (Product, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, req ListProductRequest) (ListProductResponse, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidSKU      = errors.New("invalid_sku")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidStock    = errors.New("invalid_stock")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidID       = errors.New("invalid_id")
	ErrDuplicate       = errors.New("sku_exists")
	ErrNotFound        = errors.New("not_found")
)
