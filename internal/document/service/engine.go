package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/clock"
	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/document/domain"
	inventorydomain "github.com/smallbiznis/backoffice/internal/inventory/domain"
	obsmetrics "github.com/smallbiznis/backoffice/internal/observability/metrics"
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
	Clock       clock.Clock
	ObsMetrics  *obsmetrics.Metrics         `optional:"true"`
	Invalidator dashboarddomain.Invalidator `optional:"true"`
}

// Engine issues documents of any kind. Every write runs in one transaction
// covering header, items, stock and ledger.
type Engine struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	inventory   inventorydomain.Service
	clock       clock.Clock
	obsMetrics  *obsmetrics.Metrics
	invalidator dashboarddomain.Invalidator
}

func NewEngine(p Params) *Engine {
	return &Engine{
		db:          p.DB,
		log:         p.Log.Named("document.engine"),
		genID:       p.GenID,
		repo:        p.Repo,
		inventory:   p.Inventory,
		clock:       p.Clock,
		obsMetrics:  p.ObsMetrics,
		invalidator: p.Invalidator,
	}
}

func (e *Engine) create(ctx context.Context, kind domain.Kind, req domain.DocumentInput, items []domain.ItemInput) (domain.Document, error) {
	doc, lines, err := e.build(kind, req, items)
	if err != nil {
		return domain.Document{}, err
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return e.issue(ctx, tx, kind, &doc, lines)
	})
	if err != nil {
		return domain.Document{}, e.mapWriteErr(kind, err)
	}

	e.log.Info("document issued",
		zap.String("kind", kind.Name),
		zap.String("id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.Int("items", len(lines)),
	)
	e.obsMetrics.RecordDocumentIssued(ctx, kind.Name)
	dashboarddomain.Invalidate(ctx, e.invalidator)
	return e.get(ctx, kind, doc.ID)
}

// issue writes header, items and stock movements on tx in that order.
func (e *Engine) issue(ctx context.Context, tx *gorm.DB, kind domain.Kind, doc *domain.Document, lines []domain.Item) error {
	now := time.Now().UTC()
	doc.ID = e.genID.Generate()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := e.repo.InsertHeader(ctx, tx, kind, doc); err != nil {
		return headerErr(err)
	}
	if err := e.insertItems(ctx, tx, kind, doc.ID, lines, now); err != nil {
		return err
	}
	return e.move(ctx, tx, kind, doc.ID, lines, inventorydomain.MovementOut, "")
}

func (e *Engine) update(ctx context.Context, kind domain.Kind, id string, req domain.DocumentInput, items []domain.ItemInput) (domain.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}
	doc, lines, err := e.build(kind, req, items)
	if err != nil && !(items == nil && errors.Is(err, domain.ErrEmptyItems)) {
		return domain.Document{}, err
	}
	doc.ID = docID

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := e.repo.FindHeader(ctx, tx, kind, docID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if strings.TrimSpace(string(req.Status)) == "" {
			doc.Status = current.Status
		}

		now := time.Now().UTC()
		doc.UpdatedAt = now
		if _, err := e.repo.UpdateHeader(ctx, tx, kind, &doc); err != nil {
			return headerErr(err)
		}
		if items == nil {
			return nil
		}

		previous, err := e.repo.ListItems(ctx, tx, kind, docID)
		if err != nil {
			return err
		}
		if err := e.move(ctx, tx, kind, docID, previous, inventorydomain.MovementIn, kind.Name+" updated: reversal"); err != nil {
			return err
		}
		if err := e.repo.DeleteItems(ctx, tx, kind, docID); err != nil {
			return err
		}
		if err := e.insertItems(ctx, tx, kind, docID, lines, now); err != nil {
			return err
		}
		return e.move(ctx, tx, kind, docID, lines, inventorydomain.MovementOut, "")
	})
	if err != nil {
		return domain.Document{}, e.mapWriteErr(kind, err)
	}

	dashboarddomain.Invalidate(ctx, e.invalidator)
	return e.get(ctx, kind, docID)
}

func (e *Engine) delete(ctx context.Context, kind domain.Kind, id string) error {
	docID, err := parseID(id)
	if err != nil {
		return err
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := e.repo.FindHeader(ctx, tx, kind, docID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}

		items, err := e.repo.ListItems(ctx, tx, kind, docID)
		if err != nil {
			return err
		}
		if err := e.move(ctx, tx, kind, docID, items, inventorydomain.MovementIn, kind.Name+" deleted"); err != nil {
			return err
		}
		if err := e.repo.DeleteItems(ctx, tx, kind, docID); err != nil {
			return err
		}
		affected, err := e.repo.DeleteHeader(ctx, tx, kind, docID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return e.mapWriteErr(kind, err)
	}

	e.log.Info("document deleted", zap.String("kind", kind.Name), zap.String("id", docID.String()))
	e.obsMetrics.RecordDocumentDeleted(ctx, kind.Name)
	dashboarddomain.Invalidate(ctx, e.invalidator)
	return nil
}

func (e *Engine) getByID(ctx context.Context, kind domain.Kind, id string) (domain.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}
	return e.get(ctx, kind, docID)
}

func (e *Engine) get(ctx context.Context, kind domain.Kind, id snowflake.ID) (domain.Document, error) {
	doc, err := e.load(ctx, e.db, kind, id)
	if err != nil {
		return domain.Document{}, err
	}
	return *doc, nil
}

func (e *Engine) load(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (*domain.Document, error) {
	doc, err := e.repo.FindHeader(ctx, db, kind, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	items, err := e.repo.ListItems(ctx, db, kind, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	doc.Items = items
	return doc, nil
}

func (e *Engine) list(ctx context.Context, kind domain.Kind, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{Search: req.Search}
	if v := strings.TrimSpace(req.Status); v != "" {
		filter.Status = domain.Status(v)
		if !kind.Allows(filter.Status) {
			return domain.ListResponse{}, domain.ErrInvalidStatus
		}
	}
	if v := strings.TrimSpace(req.CustomerID); v != "" {
		customerID, err := snowflake.ParseString(v)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}

	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	docs, total, err := e.repo.List(ctx, e.db, kind, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return domain.ListResponse{
		Documents:  docs,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

// updateStatus changes only the status. It never moves stock.
func (e *Engine) updateStatus(ctx context.Context, kind domain.Kind, id string, status domain.Status) (domain.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}
	status = domain.Status(strings.TrimSpace(string(status)))
	if !kind.Allows(status) {
		return domain.Document{}, domain.ErrInvalidStatus
	}

	affected, err := e.repo.UpdateStatus(ctx, e.db, kind, docID, status, time.Now().UTC())
	if err != nil {
		return domain.Document{}, err
	}
	if affected == 0 {
		return domain.Document{}, domain.ErrNotFound
	}

	dashboarddomain.Invalidate(ctx, e.invalidator)
	return e.get(ctx, kind, docID)
}

func (e *Engine) insertItems(ctx context.Context, tx *gorm.DB, kind domain.Kind, docID snowflake.ID, lines []domain.Item, now time.Time) error {
	for i := range lines {
		lines[i].ID = e.genID.Generate()
		lines[i].DocumentID = docID
		lines[i].Position = i
		lines[i].CreatedAt = now
	}
	if err := e.repo.InsertItems(ctx, tx, kind, lines); err != nil {
		if db.IsForeignKeyErr(err) {
			return domain.ErrProductNotFound
		}
		return err
	}
	return nil
}

// move posts one ledger movement per product line. Kinds that do not move
// stock are skipped.
func (e *Engine) move(ctx context.Context, tx *gorm.DB, kind domain.Kind, docID snowflake.ID, lines []domain.Item, movement inventorydomain.MovementType, notes string) error {
	if !kind.MovesStock {
		return nil
	}

	ref := docID
	movements := make([]inventorydomain.Movement, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == nil {
			continue
		}
		movements = append(movements, inventorydomain.Movement{
			ProductID:     *line.ProductID,
			Type:          movement,
			Quantity:      line.Quantity,
			ReferenceType: inventorydomain.ReferenceInvoice,
			ReferenceID:   &ref,
			Notes:         notes,
		})
	}
	return e.inventory.Post(ctx, tx, movements)
}

func (e *Engine) mapWriteErr(kind domain.Kind, err error) error {
	switch {
	case db.IsDuplicateKeyErr(err):
		return domain.ErrDuplicateNumber
	case errors.Is(err, inventorydomain.ErrProductNotFound):
		return fmt.Errorf("%w: %v", domain.ErrProductNotFound, err)
	case errors.Is(err, inventorydomain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrNotConvertible):
		return err
	}
	e.log.Error("document write failed", zap.String("kind", kind.Name), zap.Error(err))
	return err
}

func headerErr(err error) error {
	if db.IsForeignKeyErr(err) {
		return domain.ErrCustomerNotFound
	}
	return err
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
