package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type CategoryService struct {
	base
}

func NewCategoryService(p Params) domain.CategoryService {
	return &CategoryService{base: newBase(p, "category.service")}
}

func (s *CategoryService) Create(ctx context.Context, req domain.CategoryInput) (domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	category := domain.Category{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertCategory(ctx, s.db, &category); err != nil {
		return domain.Category{}, s.mapWriteErr(err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, req domain.CategoryInput) (domain.Category, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return domain.Category{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, domain.ErrInvalidName
	}

	affected, err := s.repo.UpdateCategory(ctx, s.db, &domain.Category{
		ID:          categoryID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.Category{}, s.mapWriteErr(err)
	}
	if affected == 0 {
		return domain.Category{}, domain.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	categoryID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.guardedDelete(ctx, usageguard.KindCategory, categoryID, func(tx *gorm.DB) (int64, error) {
		return s.repo.DeleteCategory(ctx, tx, categoryID)
	})
}

func (s *CategoryService) GetByID(ctx context.Context, id string) (domain.Category, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return domain.Category{}, err
	}
	category, err := s.repo.FindCategory(ctx, s.db, categoryID)
	if err != nil {
		return domain.Category{}, err
	}
	if category == nil {
		return domain.Category{}, domain.ErrNotFound
	}
	return *category, nil
}

func (s *CategoryService) List(ctx context.Context, req domain.ListRequest) (domain.ListCategoryResponse, error) {
	page := pageOf(req)
	items, total, err := s.repo.ListCategories(ctx, s.db, req.Search, page)
	if err != nil {
		return domain.ListCategoryResponse{}, err
	}
	if items == nil {
		items = []domain.Category{}
	}
	return domain.ListCategoryResponse{
		Categories: items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *CategoryService) Usage(ctx context.Context, id string) (usageguard.Usage, error) {
	return s.usage(ctx, usageguard.KindCategory, id)
}
