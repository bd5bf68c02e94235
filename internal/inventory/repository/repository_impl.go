package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/inventory/domain"
	"github.com/smallbiznis/backoffice/pkg/db/option"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Decrement(ctx context.Context, db *gorm.DB, productID snowflake.ID, qty decimal.Decimal, allowNegative bool) (int64, error) {
	now := time.Now().UTC()
	var result *gorm.DB
	if allowNegative {
		result = db.WithContext(ctx).Exec(
			`UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ? WHERE id = ?`,
			qty, now, productID,
		)
	} else {
		result = db.WithContext(ctx).Exec(
			`UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ?
			 WHERE id = ? AND stock_quantity >= ?`,
			qty, now, productID, qty,
		)
	}
	return result.RowsAffected, result.Error
}

func (r *repo) Increment(ctx context.Context, db *gorm.DB, productID snowflake.ID, qty decimal.Decimal) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?`,
		qty, time.Now().UTC(), productID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ProductExists(ctx context.Context, db *gorm.DB, productID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Table("products").Where("id = ?", productID).Count(&count).Error
	return count > 0, err
}

func (r *repo) Append(ctx context.Context, db *gorm.DB, rows []domain.Transaction) error {
	for _, row := range rows {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO inventory_transactions (id, product_id, type, quantity, reference_type, reference_id, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID,
			row.ProductID,
			row.Type,
			row.Quantity,
			row.ReferenceType,
			row.ReferenceID,
			row.Notes,
			row.CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.TransactionFilter, page pagination.Pagination) ([]domain.Transaction, int64, error) {
	stmt := db.WithContext(ctx).Table("inventory_transactions AS t")
	if filter.ProductID != nil {
		stmt = stmt.Where("t.product_id = ?", *filter.ProductID)
	}
	if filter.ReferenceType != "" {
		stmt = stmt.Where("t.reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		stmt = stmt.Where("t.reference_id = ?", *filter.ReferenceID)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Transaction
	err := option.Apply(stmt,
		option.ApplyPagination(page),
	).
		Select("t.*, p.name AS product_name, p.sku AS product_sku").
		Joins("JOIN products p ON p.id = t.product_id").
		Order("t.created_at desc, t.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
