package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Product carries its live stock level. Unit holds the unit name, not its id.
type Product struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:text;not null" json:"name"`
	SKU           string          `gorm:"column:sku;type:text;not null" json:"sku"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	CategoryID    *snowflake.ID   `json:"category_id,omitempty"`
	CategoryName  string          `gorm:"->;-:migration" json:"category_name,omitempty"`
	Unit          string          `json:"unit"`
	Price         decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"price"`
	Cost          decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"cost"`
	StockQuantity decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"stock_quantity"`
	MinStock      decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"min_stock"`
	Status        Status          `gorm:"type:text;not null" json:"status"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
