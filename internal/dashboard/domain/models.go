package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RecentInvoice struct {
	ID           snowflake.ID    `json:"id"`
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	IssueDate    time.Time       `json:"issue_date"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

type RecentCustomer struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Email     *string      `json:"email"`
	CreatedAt time.Time    `json:"created_at"`
}

// Point is one bucket of a sales series. Date is YYYY-MM-DD for daily and
// YYYY-MM for monthly series.
type Point struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type Stats struct {
	TotalSales       decimal.Decimal  `json:"total_sales"`
	TotalInvoices    int64            `json:"total_invoices"`
	TotalCustomers   int64            `json:"total_customers"`
	TotalProducts    int64            `json:"total_products"`
	LowStockProducts int64            `json:"low_stock_products"`
	RecentInvoices   []RecentInvoice  `json:"recent_invoices"`
	RecentCustomers  []RecentCustomer `json:"recent_customers"`
	DailySales       []Point          `json:"daily_sales"`
	MonthlyRevenue   []Point          `json:"monthly_revenue"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
}

// Invalidator drops cached aggregates after a write that changes them.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Invalidate is a nil-safe call on inv.
func Invalidate(ctx context.Context, inv Invalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}
