package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search     string
	Status     Status
	CustomerID *snowflake.ID
}

// Repository runs every statement against the db it is given, so the engine
// can compose them inside one transaction.
type Repository interface {
	InsertHeader(ctx context.Context, db *gorm.DB, kind Kind, doc *Document) error
	UpdateHeader(ctx context.Context, db *gorm.DB, kind Kind, doc *Document) (int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID, status Status, at time.Time) (int64, error)
	DeleteHeader(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (int64, error)
	FindHeader(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (*Document, error)

	InsertItems(ctx context.Context, db *gorm.DB, kind Kind, items []Item) error
	DeleteItems(ctx context.Context, db *gorm.DB, kind Kind, documentID snowflake.ID) error
	ListItems(ctx context.Context, db *gorm.DB, kind Kind, documentID snowflake.ID) ([]Item, error)

	List(ctx context.Context, db *gorm.DB, kind Kind, filter ListFilter, page pagination.Pagination) ([]Document, int64, error)
}
