package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     *string      `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	City      string       `json:"city,omitempty"`
	TaxID     string       `gorm:"column:tax_id" json:"tax_id,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
