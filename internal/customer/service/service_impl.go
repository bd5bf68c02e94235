package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/customer/domain"
	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/usageguard"
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
	Guard       *usageguard.Guard
	Invalidator dashboarddomain.Invalidator `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	guard       *usageguard.Guard
	invalidator dashboarddomain.Invalidator
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("customer.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		guard:       p.Guard,
		invalidator: p.Invalidator,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CustomerInput) (domain.Customer, error) {
	customer, err := normalize(req)
	if err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer.ID = s.genID.Generate()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, s.mapWriteErr(err)
	}
	dashboarddomain.Invalidate(ctx, s.invalidator)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.CustomerInput) (domain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}
	customer, err := normalize(req)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.ID = customerID
	customer.UpdatedAt = time.Now().UTC()

	affected, err := s.repo.Update(ctx, s.db, &customer)
	if err != nil {
		return domain.Customer{}, s.mapWriteErr(err)
	}
	if affected == 0 {
		return domain.Customer{}, domain.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.guard.Ensure(ctx, tx, usageguard.KindCustomer, customerID); err != nil {
			if errors.Is(err, usageguard.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		affected, err := s.repo.Delete(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	dashboarddomain.Invalidate(ctx, s.invalidator)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()

	items, total, err := s.repo.List(ctx, s.db, req.Search, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}
	if items == nil {
		items = []domain.Customer{}
	}
	return domain.ListCustomerResponse{
		Customers:  items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) Usage(ctx context.Context, id string) (usageguard.Usage, error) {
	customerID, err := parseID(id)
	if err != nil {
		return usageguard.Usage{}, err
	}
	usage, err := s.guard.CheckUsage(ctx, s.db, usageguard.KindCustomer, customerID)
	if errors.Is(err, usageguard.ErrNotFound) {
		return usageguard.Usage{}, domain.ErrNotFound
	}
	return usage, err
}

func (s *Service) mapWriteErr(err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicate
	}
	s.log.Error("customer write failed", zap.Error(err))
	return err
}

func normalize(req domain.CustomerInput) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	var email *string
	if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
		if !strings.Contains(v, "@") {
			return domain.Customer{}, domain.ErrInvalidEmail
		}
		email = &v
	}

	return domain.Customer{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		TaxID:   strings.TrimSpace(req.TaxID),
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
