package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/pkg/db/option"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertCategory(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO categories (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	).Error
}

func (r *repo) UpdateCategory(ctx context.Context, db *gorm.DB, category *domain.Category) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		category.Name, category.Description, category.UpdatedAt, category.ID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteCategory(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM categories WHERE id = ?`, id)
	return result.RowsAffected, result.Error
}

func (r *repo) FindCategory(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Category, error) {
	var category domain.Category
	err := db.WithContext(ctx).
		Raw(`SELECT id, name, description, created_at, updated_at FROM categories WHERE id = ?`, id).
		Scan(&category).Error
	if err != nil {
		return nil, err
	}
	if category.ID == 0 {
		return nil, nil
	}
	return &category, nil
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB, search string, page pagination.Pagination) ([]domain.Category, int64, error) {
	var categories []domain.Category
	total, err := list(ctx, db, &domain.Category{}, &categories, search, page, "name", "description")
	return categories, total, err
}

func (r *repo) InsertUnit(ctx context.Context, db *gorm.DB, unit *domain.Unit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO units (id, name, symbol, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		unit.ID, unit.Name, unit.Symbol, unit.CreatedAt, unit.UpdatedAt,
	).Error
}

func (r *repo) UpdateUnit(ctx context.Context, db *gorm.DB, unit *domain.Unit) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE units SET name = ?, symbol = ?, updated_at = ? WHERE id = ?`,
		unit.Name, unit.Symbol, unit.UpdatedAt, unit.ID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM units WHERE id = ?`, id)
	return result.RowsAffected, result.Error
}

func (r *repo) FindUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Unit, error) {
	var unit domain.Unit
	err := db.WithContext(ctx).
		Raw(`SELECT id, name, symbol, created_at, updated_at FROM units WHERE id = ?`, id).
		Scan(&unit).Error
	if err != nil {
		return nil, err
	}
	if unit.ID == 0 {
		return nil, nil
	}
	return &unit, nil
}

func (r *repo) ListUnits(ctx context.Context, db *gorm.DB, search string, page pagination.Pagination) ([]domain.Unit, int64, error) {
	var units []domain.Unit
	total, err := list(ctx, db, &domain.Unit{}, &units, search, page, "name", "symbol")
	return units, total, err
}

func (r *repo) RenameProductUnit(ctx context.Context, db *gorm.DB, from, to string) error {
	return db.WithContext(ctx).Exec(`UPDATE products SET unit = ? WHERE unit = ?`, to, from).Error
}

// list returns one page of model rows ordered by name plus the unpaged total.
func list(ctx context.Context, db *gorm.DB, model, dest interface{}, search string, page pagination.Pagination, columns ...string) (int64, error) {
	stmt := option.Apply(db.WithContext(ctx).Model(model), option.ApplySearch(search, columns...))

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	err := option.ApplyPagination(page).Apply(stmt).Order("name asc, id asc").Find(dest).Error
	return total, err
}
