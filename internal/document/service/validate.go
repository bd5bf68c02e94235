package service

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/document/domain"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// build validates the input and returns the header and lines to write. The
// header is returned populated even when only the item set is rejected.
func (e *Engine) build(kind domain.Kind, req domain.DocumentInput, items []domain.ItemInput) (domain.Document, []domain.Item, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return domain.Document{}, nil, domain.ErrInvalidNumber
	}
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Document{}, nil, domain.ErrInvalidCustomer
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return domain.Document{}, nil, err
	}
	if issueDate == nil {
		today := truncateDay(e.clock.Now())
		issueDate = &today
	}
	term, err := parseDate(req.TermDate)
	if err != nil {
		return domain.Document{}, nil, err
	}

	status := domain.Status(strings.TrimSpace(string(req.Status)))
	if status == "" {
		status = domain.StatusDraft
	}
	if !kind.Allows(status) {
		return domain.Document{}, nil, domain.ErrInvalidStatus
	}

	doc := domain.Document{
		Number:         number,
		CustomerID:     customerID,
		IssueDate:      *issueDate,
		Subtotal:       req.Subtotal,
		TaxRate:        req.TaxRate,
		TaxAmount:      req.TaxAmount,
		DiscountRate:   req.DiscountRate,
		DiscountAmount: req.DiscountAmount,
		Total:          req.Total,
		Status:         status,
		Notes:          strings.TrimSpace(req.Notes),
	}
	doc.SetTerm(kind, term)

	if doc.BalanceMismatch() {
		e.log.Warn("document total does not balance",
			zap.String("kind", kind.Name),
			zap.String("number", number),
			zap.String("subtotal", doc.Subtotal.String()),
			zap.String("discount_amount", doc.DiscountAmount.String()),
			zap.String("tax_amount", doc.TaxAmount.String()),
			zap.String("total", doc.Total.String()),
		)
	}

	if len(items) == 0 {
		return doc, nil, domain.ErrEmptyItems
	}
	lines := make([]domain.Item, 0, len(items))
	for _, in := range items {
		line, err := buildItem(in)
		if err != nil {
			return doc, nil, err
		}
		if !line.Quantity.Mul(line.UnitPrice).Equal(line.Total) {
			e.log.Warn("item total differs from quantity x unit price",
				zap.String("kind", kind.Name),
				zap.String("number", number),
				zap.Int("position", len(lines)),
			)
		}
		lines = append(lines, line)
	}
	return doc, lines, nil
}

func buildItem(in domain.ItemInput) (domain.Item, error) {
	var productID *snowflake.ID
	if v := strings.TrimSpace(in.ProductID); v != "" {
		id, err := snowflake.ParseString(v)
		if err != nil || id == 0 {
			return domain.Item{}, domain.ErrInvalidProduct
		}
		productID = &id
	}
	description := strings.TrimSpace(in.Description)
	if productID == nil && description == "" {
		return domain.Item{}, domain.ErrInvalidItem
	}
	if !in.Quantity.IsPositive() {
		return domain.Item{}, domain.ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() {
		return domain.Item{}, domain.ErrInvalidUnitPrice
	}
	return domain.Item{
		ProductID:   productID,
		Description: description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Total:       in.Total,
	}, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and keeps only the UTC calendar day.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, domain.ErrInvalidDate
		}
	}
	day := truncateDay(t)
	return &day, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
