package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Document is an invoice or quotation header with its lines. Only one of
// DueDate and ExpiryDate is used, according to the kind.
type Document struct {
	ID             snowflake.ID    `json:"id"`
	Number         string          `json:"number"`
	CustomerID     snowflake.ID    `json:"customer_id"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerEmail  *string         `json:"customer_email,omitempty"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         Status          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []Item          `gorm:"-" json:"items,omitempty"`
}

// Term returns the kind's term date field.
func (d *Document) Term(kind Kind) *time.Time {
	if kind.TermColumn == KindQuotation.TermColumn {
		return d.ExpiryDate
	}
	return d.DueDate
}

func (d *Document) SetTerm(kind Kind, t *time.Time) {
	if kind.TermColumn == KindQuotation.TermColumn {
		d.ExpiryDate = t
		return
	}
	d.DueDate = t
}

// BalanceMismatch reports whether total differs from subtotal - discount + tax.
func (d *Document) BalanceMismatch() bool {
	return !d.Subtotal.Sub(d.DiscountAmount).Add(d.TaxAmount).Equal(d.Total)
}

type Item struct {
	ID          snowflake.ID    `json:"id"`
	DocumentID  snowflake.ID    `json:"document_id"`
	ProductID   *snowflake.ID   `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	ProductSKU  string          `gorm:"column:product_sku" json:"product_sku,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Position    int             `json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
}
