package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search     string
	CategoryID *snowflake.ID
	Status     Status
	LowStock   bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	// Update writes every column except stock_quantity, which only moves through the ledger.
	Update(ctx context.Context, db *gorm.DB, product *Product) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Product, int64, error)
}
