package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

type ReferenceType string

const (
	ReferenceInvoice    ReferenceType = "invoice"
	ReferencePurchase   ReferenceType = "purchase"
	ReferenceAdjustment ReferenceType = "adjustment"
	ReferenceInitial    ReferenceType = "initial"
)

func (t ReferenceType) Valid() bool {
	switch t {
	case ReferenceInvoice, ReferencePurchase, ReferenceAdjustment, ReferenceInitial:
		return true
	}
	return false
}

// Transaction is one append-only stock ledger row. Quantity is a positive
// magnitude for in/out and the signed delta for adjustment.
type Transaction struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ProductID     snowflake.ID    `gorm:"not null" json:"product_id"`
	ProductName   string          `gorm:"->;-:migration" json:"product_name,omitempty"`
	ProductSKU    string          `gorm:"column:product_sku;->;-:migration" json:"product_sku,omitempty"`
	Type          MovementType    `gorm:"type:text;not null" json:"type"`
	Quantity      decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"quantity"`
	ReferenceType ReferenceType   `gorm:"type:text;not null" json:"reference_type"`
	ReferenceID   *snowflake.ID   `json:"reference_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

func (Transaction) TableName() string { return "inventory_transactions" }

// Movement is a stock change requested by another component inside its own transaction.
type Movement struct {
	ProductID     snowflake.ID
	Type          MovementType
	Quantity      decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   *snowflake.ID
	Notes         string
}

// Delta is the signed change the movement applies to stock_quantity.
func (m Movement) Delta() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
