package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UnitService struct {
	base
}

func NewUnitService(p Params) domain.UnitService {
	return &UnitService{base: newBase(p, "unit.service")}
}

func (s *UnitService) Create(ctx context.Context, req domain.UnitInput) (domain.Unit, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Unit{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	unit := domain.Unit{
		ID:        s.genID.Generate(),
		Name:      name,
		Symbol:    strings.TrimSpace(req.Symbol),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertUnit(ctx, s.db, &unit); err != nil {
		return domain.Unit{}, s.mapWriteErr(err)
	}
	return unit, nil
}

// Update renames the unit and carries the new name over to its products in the same transaction.
func (s *UnitService) Update(ctx context.Context, id string, req domain.UnitInput) (domain.Unit, error) {
	unitID, err := parseID(id)
	if err != nil {
		return domain.Unit{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Unit{}, domain.ErrInvalidName
	}

	var renamed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindUnit(ctx, tx, unitID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		if _, err := s.repo.UpdateUnit(ctx, tx, &domain.Unit{
			ID:        unitID,
			Name:      name,
			Symbol:    strings.TrimSpace(req.Symbol),
			UpdatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}

		if current.Name != name {
			renamed = true
			return s.repo.RenameProductUnit(ctx, tx, current.Name, name)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Unit{}, err
		}
		return domain.Unit{}, s.mapWriteErr(err)
	}
	if renamed {
		s.log.Info("unit renamed", zap.String("unit_id", unitID.String()), zap.String("name", name))
	}
	return s.GetByID(ctx, id)
}

func (s *UnitService) Delete(ctx context.Context, id string) error {
	unitID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.guardedDelete(ctx, usageguard.KindUnit, unitID, func(tx *gorm.DB) (int64, error) {
		return s.repo.DeleteUnit(ctx, tx, unitID)
	})
}

func (s *UnitService) GetByID(ctx context.Context, id string) (domain.Unit, error) {
	unitID, err := parseID(id)
	if err != nil {
		return domain.Unit{}, err
	}
	unit, err := s.repo.FindUnit(ctx, s.db, unitID)
	if err != nil {
		return domain.Unit{}, err
	}
	if unit == nil {
		return domain.Unit{}, domain.ErrNotFound
	}
	return *unit, nil
}

func (s *UnitService) List(ctx context.Context, req domain.ListRequest) (domain.ListUnitResponse, error) {
	page := pageOf(req)
	items, total, err := s.repo.ListUnits(ctx, s.db, req.Search, page)
	if err != nil {
		return domain.ListUnitResponse{}, err
	}
	if items == nil {
		items = []domain.Unit{}
	}
	return domain.ListUnitResponse{
		Units:      items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *UnitService) Usage(ctx context.Context, id string) (usageguard.Usage, error) {
	return s.usage(ctx, usageguard.KindUnit, id)
}
