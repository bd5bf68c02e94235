package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Totals(ctx context.Context, db *gorm.DB) (domain.Totals, error) {
	var totals domain.Totals
	err := db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COALESCE(SUM(total), 0) FROM invoices WHERE status <> 'cancelled') AS total_sales,
			(SELECT COUNT(*) FROM invoices) AS total_invoices,
			(SELECT COUNT(*) FROM customers) AS total_customers,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM products WHERE status = 'active' AND stock_quantity <= min_stock) AS low_stock_products`,
	).Scan(&totals).Error
	return totals, err
}

func (r *repo) RecentInvoices(ctx context.Context, db *gorm.DB, limit int) ([]domain.RecentInvoice, error) {
	var rows []domain.RecentInvoice
	err := db.WithContext(ctx).Raw(
		`SELECT i.id, i.number, c.name AS customer_name, i.issue_date, i.total, i.status, i.created_at
		 FROM invoices i
		 JOIN customers c ON c.id = i.customer_id
		 ORDER BY i.created_at DESC, i.id DESC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	return rows, err
}

func (r *repo) RecentCustomers(ctx context.Context, db *gorm.DB, limit int) ([]domain.RecentCustomer, error) {
	var rows []domain.RecentCustomer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, created_at FROM customers ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	).Scan(&rows).Error
	return rows, err
}

func (r *repo) SalesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.SaleRow, error) {
	var rows []domain.SaleRow
	err := db.WithContext(ctx).Raw(
		`SELECT issue_date, total FROM invoices WHERE status <> 'cancelled' AND issue_date >= ?`,
		since,
	).Scan(&rows).Error
	return rows, err
}
