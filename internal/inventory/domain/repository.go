package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type TransactionFilter struct {
	ProductID     *snowflake.ID
	ReferenceType ReferenceType
	ReferenceID   *snowflake.ID
}

// Repository methods take the handle to run on so callers can pass a transaction.
type Repository interface {
	// Decrement lowers stock by qty. Unless allowNegative is set the update only
	// matches while stock_quantity >= qty. Returns rows affected.
	Decrement(ctx context.Context, db *gorm.DB, productID snowflake.ID, qty decimal.Decimal, allowNegative bool) (int64, error)
	Increment(ctx context.Context, db *gorm.DB, productID snowflake.ID, qty decimal.Decimal) (int64, error)
	ProductExists(ctx context.Context, db *gorm.DB, productID snowflake.ID) (bool, error)
	Append(ctx context.Context, db *gorm.DB, rows []Transaction) error
	List(ctx context.Context, db *gorm.DB, filter TransactionFilter, page pagination.Pagination) ([]Transaction, int64, error)
}
