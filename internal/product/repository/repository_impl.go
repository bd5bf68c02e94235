package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/product/domain"
	"github.com/smallbiznis/backoffice/pkg/db/option"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectProduct = `SELECT p.id, p.name, p.sku, p.description, p.category_id, c.name AS category_name,
	p.unit, p.price, p.cost, p.stock_quantity, p.min_stock, p.status, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, name, sku, description, category_id, unit, price, cost, stock_quantity, min_stock, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.SKU,
		product.Description,
		product.CategoryID,
		product.Unit,
		product.Price,
		product.Cost,
		product.StockQuantity,
		product.MinStock,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE products SET name = ?, sku = ?, description = ?, category_id = ?, unit = ?, price = ?, cost = ?,
		 min_stock = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.SKU,
		product.Description,
		product.CategoryID,
		product.Unit,
		product.Price,
		product.Cost,
		product.MinStock,
		product.Status,
		product.UpdatedAt,
		product.ID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id)
	return result.RowsAffected, result.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	if err := db.WithContext(ctx).Raw(selectProduct+` WHERE p.id = ?`, id).Scan(&product).Error; err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).
		Table("products AS p").
		Joins("LEFT JOIN categories c ON c.id = p.category_id")
	stmt = option.Apply(stmt,
		option.ApplySearch(filter.Search, "p.name", "p.sku"),
		option.QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
			if filter.CategoryID != nil {
				db = db.Where("p.category_id = ?", *filter.CategoryID)
			}
			if filter.Status != "" {
				db = db.Where("p.status = ?", filter.Status)
			}
			if filter.LowStock {
				db = db.Where("p.stock_quantity <= p.min_stock")
			}
			return db
		}),
	)

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []domain.Product
	err := option.ApplyPagination(page).Apply(stmt).
		Select(`p.id, p.name, p.sku, p.description, p.category_id, c.name AS category_name,
			p.unit, p.price, p.cost, p.stock_quantity, p.min_stock, p.status, p.created_at, p.updated_at`).
		Order("p.created_at desc, p.id desc").
		Scan(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
