package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/document/domain"
	"github.com/smallbiznis/backoffice/pkg/db/option"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func headerColumns(kind domain.Kind) string {
	return fmt.Sprintf(`h.id, h.number, h.customer_id, c.name AS customer_name, c.email AS customer_email,
		h.issue_date, h.%s, h.subtotal, h.tax_rate, h.tax_amount, h.discount_rate, h.discount_amount,
		h.total, h.status, h.notes, h.created_at, h.updated_at`, kind.TermColumn)
}

func (r *repo) InsertHeader(ctx context.Context, db *gorm.DB, kind domain.Kind, doc *domain.Document) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, number, customer_id, issue_date, %s, subtotal, tax_rate, tax_amount,
		 discount_rate, discount_amount, total, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kind.Table, kind.TermColumn,
	)
	return db.WithContext(ctx).Exec(query,
		doc.ID,
		doc.Number,
		doc.CustomerID,
		doc.IssueDate,
		doc.Term(kind),
		doc.Subtotal,
		doc.TaxRate,
		doc.TaxAmount,
		doc.DiscountRate,
		doc.DiscountAmount,
		doc.Total,
		doc.Status,
		doc.Notes,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Error
}

func (r *repo) UpdateHeader(ctx context.Context, db *gorm.DB, kind domain.Kind, doc *domain.Document) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET number = ?, customer_id = ?, issue_date = ?, %s = ?, subtotal = ?, tax_rate = ?,
		 tax_amount = ?, discount_rate = ?, discount_amount = ?, total = ?, status = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		kind.Table, kind.TermColumn,
	)
	result := db.WithContext(ctx).Exec(query,
		doc.Number,
		doc.CustomerID,
		doc.IssueDate,
		doc.Term(kind),
		doc.Subtotal,
		doc.TaxRate,
		doc.TaxAmount,
		doc.DiscountRate,
		doc.DiscountAmount,
		doc.Total,
		doc.Status,
		doc.Notes,
		doc.UpdatedAt,
		doc.ID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID, status domain.Status, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE %s SET status = ?, updated_at = ? WHERE id = ?`, kind.Table),
		status, at, id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteHeader(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, kind.Table), id)
	return result.RowsAffected, result.Error
}

func (r *repo) FindHeader(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	query := fmt.Sprintf(
		`SELECT %s FROM %s h JOIN customers c ON c.id = h.customer_id WHERE h.id = ?`,
		headerColumns(kind), kind.Table,
	)
	if err := db.WithContext(ctx).Raw(query, id).Scan(&doc).Error; err != nil {
		return nil, err
	}
	if doc.ID == 0 {
		return nil, nil
	}
	return &doc, nil
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, kind domain.Kind, items []domain.Item) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, %s, product_id, description, quantity, unit_price, total, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kind.ItemTable, kind.ParentColumn,
	)
	for _, item := range items {
		err := db.WithContext(ctx).Exec(query,
			item.ID,
			item.DocumentID,
			item.ProductID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.Total,
			item.Position,
			item.CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, kind domain.Kind, documentID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, kind.ItemTable, kind.ParentColumn),
		documentID,
	).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, kind domain.Kind, documentID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	query := fmt.Sprintf(
		`SELECT i.id, i.%s AS document_id, i.product_id, p.name AS product_name, p.sku AS product_sku,
		 i.description, i.quantity, i.unit_price, i.total, i.position, i.created_at
		 FROM %s i
		 LEFT JOIN products p ON p.id = i.product_id
		 WHERE i.%s = ?
		 ORDER BY i.position ASC, i.id ASC`,
		kind.ParentColumn, kind.ItemTable, kind.ParentColumn,
	)
	if err := db.WithContext(ctx).Raw(query, documentID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, kind domain.Kind, filter domain.ListFilter, page pagination.Pagination) ([]domain.Document, int64, error) {
	stmt := db.WithContext(ctx).
		Table(kind.Table + " AS h").
		Joins("JOIN customers c ON c.id = h.customer_id")
	stmt = option.Apply(stmt,
		option.ApplySearch(filter.Search, "h.number", "c.name"),
		option.QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
			if filter.Status != "" {
				db = db.Where("h.status = ?", filter.Status)
			}
			if filter.CustomerID != nil {
				db = db.Where("h.customer_id = ?", *filter.CustomerID)
			}
			return db
		}),
	)

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []domain.Document
	err := option.ApplyPagination(page).Apply(stmt).
		Select(headerColumns(kind)).
		Order("h.created_at desc, h.id desc").
		Scan(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
