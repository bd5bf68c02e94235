package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type AdjustRequest struct {
	ProductID     string          `json:"product_id"`
	Type          MovementType    `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType ReferenceType   `json:"reference_type"`
	Notes         string          `json:"notes"`
}

type ListTransactionsRequest struct {
	ProductID     string
	ReferenceType string
	ReferenceID   string
	Page          int
	Limit         int
}

type ListTransactionsResponse struct {
	Transactions []Transaction       `json:"transactions"`
	Pagination   pagination.PageInfo `json:"pagination"`
}

type Service interface {
	// Adjust records a manual stock movement in its own transaction.
	Adjust(ctx context.Context, req AdjustRequest) (Transaction, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) (ListTransactionsResponse, error)
	// Post applies movements and appends their ledger rows on tx, in order.
	// The caller owns the transaction.
	Post(ctx context.Context, tx *gorm.DB, movements []Movement) error
}

var (
	ErrInvalidProduct       = errors.New("invalid_product")
	ErrInvalidType          = errors.New("invalid_movement_type")
	ErrInvalidReferenceType = errors.New("invalid_reference_type")
	ErrInvalidReference     = errors.New("invalid_reference")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrProductNotFound      = errors.New("product_not_found")
	ErrInsufficientStock    = errors.New("insufficient_stock")
)
