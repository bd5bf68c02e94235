package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UnitInput struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type ListRequest struct {
	Page   int
	Limit  int
	Search string
}

type ListCategoryResponse struct {
	Categories []Category          `json:"categories"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type ListUnitResponse struct {
	Units      []Unit              `json:"units"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type CategoryService interface {
	Create(ctx context.Context, req CategoryInput) (Category, error)
	Update(ctx context.Context, id string, req CategoryInput) (Category, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Category, error)
	List(ctx context.Context, req ListRequest) (ListCategoryResponse, error)
	Usage(ctx context.Context, id string) (usageguard.Usage, error)
}

type UnitService interface {
	Create(ctx context.Context, req UnitInput) (Unit, error)
	Update(ctx context.Context, id string, req UnitInput) (Unit, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Unit, error)
	List(ctx context.Context, req ListRequest) (ListUnitResponse, error)
	Usage(ctx context.Context, id string) (usageguard.Usage, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrDuplicate   = errors.New("name_exists")
	ErrNotFound    = errors.New("not_found")
)
