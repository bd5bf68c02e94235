package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertCategory(ctx context.Context, db *gorm.DB, category *Category) error
	UpdateCategory(ctx context.Context, db *gorm.DB, category *Category) (int64, error)
	DeleteCategory(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	FindCategory(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Category, error)
	ListCategories(ctx context.Context, db *gorm.DB, search string, page pagination.Pagination) ([]Category, int64, error)

	InsertUnit(ctx context.Context, db *gorm.DB, unit *Unit) error
	UpdateUnit(ctx context.Context, db *gorm.DB, unit *Unit) (int64, error)
	DeleteUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	FindUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Unit, error)
	ListUnits(ctx context.Context, db *gorm.DB, search string, page pagination.Pagination) ([]Unit, int64, error)
	// RenameProductUnit rewrites products.unit so a renamed unit keeps its products.
	RenameProductUnit(ctx context.Context, db *gorm.DB, from, to string) error
}
