package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	inventorydomain "github.com/smallbiznis/backoffice/internal/inventory/domain"
	"github.com/smallbiznis/backoffice/internal/product/domain"
	"github.com/smallbiznis/backoffice/pkg/db"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Inventory   inventorydomain.Service
	Invalidator dashboarddomain.Invalidator `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	inventory   inventorydomain.Service
	invalidator dashboarddomain.Invalidator
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("product.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		inventory:   p.Inventory,
		invalidator: p.Invalidator,
	}
}

// Create inserts the product at zero stock and books any opening quantity as
// an initial ledger row in the same transaction.
func (s *Service) Create(ctx context.Context, req domain.ProductInput) (domain.Product, error) {
	product, err := normalize(req)
	if err != nil {
		return domain.Product{}, err
	}
	opening := decimal.Zero
	if req.StockQuantity != nil {
		opening = *req.StockQuantity
	}
	if opening.IsNegative() {
		return domain.Product{}, domain.ErrInvalidStock
	}

	now := time.Now().UTC()
	product.ID = s.genID.Generate()
	product.StockQuantity = decimal.Zero
	product.CreatedAt = now
	product.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &product); err != nil {
			return err
		}
		if !opening.IsPositive() {
			return nil
		}
		return s.inventory.Post(ctx, tx, []inventorydomain.Movement{{
			ProductID:     product.ID,
			Type:          inventorydomain.MovementIn,
			Quantity:      opening,
			ReferenceType: inventorydomain.ReferenceInitial,
			Notes:         "opening stock",
		}})
	})
	if err != nil {
		return domain.Product{}, s.mapWriteErr(err)
	}

	dashboarddomain.Invalidate(ctx, s.invalidator)
	return s.GetByID(ctx, product.ID.String())
}

// Update rewrites the product. A changed stock_quantity is booked as an
// adjustment for the difference.
func (s *Service) Update(ctx context.Context, id string, req domain.ProductInput) (domain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return domain.Product{}, err
	}
	product, err := normalize(req)
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = productID
	product.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if _, err := s.repo.Update(ctx, tx, &product); err != nil {
			return err
		}

		if req.StockQuantity == nil {
			return nil
		}
		delta := req.StockQuantity.Sub(current.StockQuantity)
		if delta.IsZero() {
			return nil
		}
		return s.inventory.Post(ctx, tx, []inventorydomain.Movement{{
			ProductID:     productID,
			Type:          inventorydomain.MovementAdjustment,
			Quantity:      delta,
			ReferenceType: inventorydomain.ReferenceAdjustment,
			Notes:         "product updated",
		}})
	})
	if err != nil {
		return domain.Product{}, s.mapWriteErr(err)
	}

	dashboarddomain.Invalidate(ctx, s.invalidator)
	return s.GetByID(ctx, id)
}

// Delete removes the product. Its ledger rows and document lines go with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, productID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	s.log.Info("product deleted", zap.String("product_id", productID.String()))
	dashboarddomain.Invalidate(ctx, s.invalidator)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	filter := domain.ListFilter{
		Search:   req.Search,
		LowStock: req.LowStock,
	}
	if v := strings.TrimSpace(req.CategoryID); v != "" {
		categoryID, err := snowflake.ParseString(v)
		if err != nil {
			return domain.ListProductResponse{}, domain.ErrInvalidCategory
		}
		filter.CategoryID = &categoryID
	}
	if v := strings.TrimSpace(req.Status); v != "" {
		filter.Status = domain.Status(v)
		if !filter.Status.Valid() {
			return domain.ListProductResponse{}, domain.ErrInvalidStatus
		}
	}

	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListProductResponse{}, err
	}
	if items == nil {
		items = []domain.Product{}
	}
	return domain.ListProductResponse{
		Products:   items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) mapWriteErr(err error) error {
	switch {
	case db.IsDuplicateKeyErr(err):
		return domain.ErrDuplicate
	case db.IsForeignKeyErr(err):
		return domain.ErrInvalidCategory
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, inventorydomain.ErrInsufficientStock):
		return err
	}
	s.log.Error("product write failed", zap.Error(err))
	return err
}

func normalize(req domain.ProductInput) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return domain.Product{}, domain.ErrInvalidSKU
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if req.MinStock.IsNegative() {
		return domain.Product{}, domain.ErrInvalidStock
	}

	status := domain.Status(strings.TrimSpace(string(req.Status)))
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return domain.Product{}, domain.ErrInvalidStatus
	}

	var categoryID *snowflake.ID
	if v := strings.TrimSpace(req.CategoryID); v != "" {
		id, err := snowflake.ParseString(v)
		if err != nil || id == 0 {
			return domain.Product{}, domain.ErrInvalidCategory
		}
		categoryID = &id
	}

	return domain.Product{
		Name:        name,
		SKU:         sku,
		Description: strings.TrimSpace(req.Description),
		CategoryID:  categoryID,
		Unit:        strings.TrimSpace(req.Unit),
		Price:       req.Price,
		Cost:        req.Cost,
		MinStock:    req.MinStock,
		Status:      status,
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
