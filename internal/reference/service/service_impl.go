package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/smallbiznis/backoffice/pkg/db"
	"github.com/smallbiznis/backoffice/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Guard *usageguard.Guard
}

// base carries what both reference services share.
type base struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	guard *usageguard.Guard
}

func newBase(p Params, name string) base {
	return base{
		db:    p.DB,
		log:   p.Log.Named(name),
		genID: p.GenID,
		repo:  p.Repo,
		guard: p.Guard,
	}
}

// guardedDelete runs the usage check and the delete in one transaction.
func (b base) guardedDelete(ctx context.Context, kind usageguard.Kind, id snowflake.ID, del func(tx *gorm.DB) (int64, error)) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := b.guard.Ensure(ctx, tx, kind, id); err != nil {
			if errors.Is(err, usageguard.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		affected, err := del(tx)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (b base) usage(ctx context.Context, kind usageguard.Kind, id string) (usageguard.Usage, error) {
	refID, err := parseID(id)
	if err != nil {
		return usageguard.Usage{}, err
	}
	usage, err := b.guard.CheckUsage(ctx, b.db, kind, refID)
	if errors.Is(err, usageguard.ErrNotFound) {
		return usageguard.Usage{}, domain.ErrNotFound
	}
	return usage, err
}

func (b base) mapWriteErr(err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicate
	}
	b.log.Error("reference write failed", zap.Error(err))
	return err
}

func pageOf(req domain.ListRequest) pagination.Pagination {
	return pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
