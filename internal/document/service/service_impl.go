package service

import (
	"context"
	"strings"

	dashboarddomain "github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/document/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service binds the engine to one document kind.
type Service struct {
	engine *Engine
	kind   domain.Kind
}

func (s *Service) Create(ctx context.Context, req domain.DocumentInput, items []domain.ItemInput) (domain.Document, error) {
	return s.engine.create(ctx, s.kind, req, items)
}

func (s *Service) Update(ctx context.Context, id string, req domain.DocumentInput, items []domain.ItemInput) (domain.Document, error) {
	return s.engine.update(ctx, s.kind, id, req, items)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.engine.delete(ctx, s.kind, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Document, error) {
	return s.engine.getByID(ctx, s.kind, id)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	return s.engine.list(ctx, s.kind, req)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Document, error) {
	return s.engine.updateStatus(ctx, s.kind, id, status)
}

func NewInvoiceService(e *Engine) domain.InvoiceService {
	return &Service{engine: e, kind: domain.KindInvoice}
}

type QuotationService struct {
	Service
}

func NewQuotationService(e *Engine) domain.QuotationService {
	return &QuotationService{Service: Service{engine: e, kind: domain.KindQuotation}}
}

// Convert copies the quotation's customer, amounts and lines onto a new
// invoice, with full stock effect, and marks the quotation accepted.
func (s *QuotationService) Convert(ctx context.Context, id string, req domain.ConvertRequest) (domain.Document, error) {
	e := s.engine
	quotationID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}

	var invoice domain.Document
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quotation, err := e.load(ctx, tx, domain.KindQuotation, quotationID)
		if err != nil {
			return err
		}
		if quotation.Status != domain.StatusDraft && quotation.Status != domain.StatusSent {
			return domain.ErrNotConvertible
		}

		number := strings.TrimSpace(req.Number)
		if number == "" {
			number = quotation.Number + "-INV"
		}
		input := domain.DocumentInput{
			Number:         number,
			CustomerID:     quotation.CustomerID.String(),
			IssueDate:      req.IssueDate,
			TermDate:       req.DueDate,
			Subtotal:       quotation.Subtotal,
			TaxRate:        quotation.TaxRate,
			TaxAmount:      quotation.TaxAmount,
			DiscountRate:   quotation.DiscountRate,
			DiscountAmount: quotation.DiscountAmount,
			Total:          quotation.Total,
			Notes:          quotation.Notes,
		}
		items := make([]domain.ItemInput, 0, len(quotation.Items))
		for _, item := range quotation.Items {
			in := domain.ItemInput{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       item.Total,
			}
			if item.ProductID != nil {
				in.ProductID = item.ProductID.String()
			}
			items = append(items, in)
		}

		doc, lines, err := e.build(domain.KindInvoice, input, items)
		if err != nil {
			return err
		}
		if err := e.issue(ctx, tx, domain.KindInvoice, &doc, lines); err != nil {
			return err
		}
		invoice = doc

		affected, err := e.repo.UpdateStatus(ctx, tx, domain.KindQuotation, quotationID, domain.StatusAccepted, doc.CreatedAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Document{}, e.mapWriteErr(domain.KindInvoice, err)
	}

	e.log.Info("quotation converted",
		zap.String("quotation_id", quotationID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
	)
	e.obsMetrics.RecordDocumentIssued(ctx, domain.KindInvoice.Name)
	dashboarddomain.Invalidate(ctx, e.invalidator)
	return e.get(ctx, domain.KindInvoice, invoice.ID)
}
