package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/config"
	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/inventory/domain"
	obsmetrics "github.com/smallbiznis/backoffice/internal/observability/metrics"
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
	Settings    *config.SettingsHolder
	ObsMetrics  *obsmetrics.Metrics         `optional:"true"`
	Invalidator dashboarddomain.Invalidator `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	settings    *config.SettingsHolder
	obsMetrics  *obsmetrics.Metrics
	invalidator dashboarddomain.Invalidator
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("inventory.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		settings:    p.Settings,
		obsMetrics:  p.ObsMetrics,
		invalidator: p.Invalidator,
	}
}

func (s *Service) Adjust(ctx context.Context, req domain.AdjustRequest) (domain.Transaction, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return domain.Transaction{}, domain.ErrInvalidProduct
	}

	movement := domain.Movement{
		ProductID:     productID,
		Type:          domain.MovementType(strings.TrimSpace(string(req.Type))),
		Quantity:      req.Quantity,
		ReferenceType: domain.ReferenceType(strings.TrimSpace(string(req.ReferenceType))),
		Notes:         strings.TrimSpace(req.Notes),
	}
	if movement.ReferenceType == "" {
		movement.ReferenceType = defaultReference(movement.Type)
	}
	if movement.ReferenceType == domain.ReferenceInvoice {
		// invoice movements are owned by the document engine
		return domain.Transaction{}, domain.ErrInvalidReferenceType
	}

	var row domain.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.apply(ctx, tx, []domain.Movement{movement})
		if err != nil {
			return err
		}
		row = rows[0]
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	dashboarddomain.Invalidate(ctx, s.invalidator)

	s.log.Info("stock adjusted",
		zap.String("product_id", productID.String()),
		zap.String("type", string(row.Type)),
		zap.String("quantity", row.Quantity.String()),
	)
	return row, nil
}

func (s *Service) Post(ctx context.Context, tx *gorm.DB, movements []domain.Movement) error {
	_, err := s.apply(ctx, tx, movements)
	return err
}

// apply validates every movement first, then mutates stock and appends the ledger rows.
func (s *Service) apply(ctx context.Context, tx *gorm.DB, movements []domain.Movement) ([]domain.Transaction, error) {
	if len(movements) == 0 {
		return nil, nil
	}
	for _, m := range movements {
		if err := validateMovement(m); err != nil {
			return nil, err
		}
	}

	allowNegative := s.settings.Get().Inventory.AllowNegativeStock
	now := time.Now().UTC()
	rows := make([]domain.Transaction, 0, len(movements))
	for _, m := range movements {
		if err := s.applyStock(ctx, tx, m, allowNegative); err != nil {
			return nil, err
		}
		rows = append(rows, domain.Transaction{
			ID:            s.genID.Generate(),
			ProductID:     m.ProductID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			Notes:         m.Notes,
			CreatedAt:     now,
		})
	}

	if err := s.repo.Append(ctx, tx, rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		s.obsMetrics.RecordStockMovement(ctx, string(row.Type), 1)
	}
	return rows, nil
}

func (s *Service) applyStock(ctx context.Context, tx *gorm.DB, m domain.Movement, allowNegative bool) error {
	delta := m.Delta()

	var (
		affected int64
		err      error
	)
	if delta.IsNegative() {
		affected, err = s.repo.Decrement(ctx, tx, m.ProductID, delta.Neg(), allowNegative)
	} else {
		affected, err = s.repo.Increment(ctx, tx, m.ProductID, delta)
	}
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	exists, err := s.repo.ProductExists(ctx, tx, m.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, m.ProductID)
	}
	return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, m.ProductID)
}

func (s *Service) ListTransactions(ctx context.Context, req domain.ListTransactionsRequest) (domain.ListTransactionsResponse, error) {
	var filter domain.TransactionFilter
	if v := strings.TrimSpace(req.ProductID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return domain.ListTransactionsResponse{}, domain.ErrInvalidProduct
		}
		filter.ProductID = &id
	}
	if v := strings.TrimSpace(req.ReferenceType); v != "" {
		ref := domain.ReferenceType(v)
		if !ref.Valid() {
			return domain.ListTransactionsResponse{}, domain.ErrInvalidReferenceType
		}
		filter.ReferenceType = ref
	}
	if v := strings.TrimSpace(req.ReferenceID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return domain.ListTransactionsResponse{}, domain.ErrInvalidReference
		}
		filter.ReferenceID = &id
	}

	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	rows, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListTransactionsResponse{}, err
	}
	if rows == nil {
		rows = []domain.Transaction{}
	}

	return domain.ListTransactionsResponse{
		Transactions: rows,
		Pagination:   pagination.BuildPageInfo(page, total),
	}, nil
}

func validateMovement(m domain.Movement) error {
	if m.ProductID == 0 {
		return domain.ErrInvalidProduct
	}
	if !m.Type.Valid() {
		return domain.ErrInvalidType
	}
	if !m.ReferenceType.Valid() {
		return domain.ErrInvalidReferenceType
	}
	switch m.Type {
	case domain.MovementAdjustment:
		if m.Quantity.IsZero() {
			return domain.ErrInvalidQuantity
		}
	default:
		if !m.Quantity.IsPositive() {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

func defaultReference(t domain.MovementType) domain.ReferenceType {
	if t == domain.MovementIn {
		return domain.ReferencePurchase
	}
	return domain.ReferenceAdjustment
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidProduct
	}
	return id, nil
}

