package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Totals struct {
	TotalSales       decimal.Decimal
	TotalInvoices    int64
	TotalCustomers   int64
	TotalProducts    int64
	LowStockProducts int64
}

// SaleRow is one non-cancelled invoice inside a series window.
type SaleRow struct {
	IssueDate time.Time
	Total     decimal.Decimal
}

type Repository interface {
	Totals(ctx context.Context, db *gorm.DB) (Totals, error)
	RecentInvoices(ctx context.Context, db *gorm.DB, limit int) ([]RecentInvoice, error)
	RecentCustomers(ctx context.Context, db *gorm.DB, limit int) ([]RecentCustomer, error)
	SalesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]SaleRow, error)
}
