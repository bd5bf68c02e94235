package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SingletonID is the id of the only profile row.
const SingletonID int64 = 1

// Profile is the company shown on issued documents.
type Profile struct {
	ID             int64           `gorm:"primaryKey" json:"-"`
	CompanyName    string          `gorm:"type:text;not null" json:"company_name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	TaxID          string          `gorm:"column:tax_id" json:"tax_id,omitempty"`
	Currency       string          `gorm:"type:text;not null" json:"currency"`
	LogoURL        string          `gorm:"column:logo_url" json:"logo_url,omitempty"`
	DefaultTaxRate decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"default_tax_rate"`
	Settings       datatypes.JSON  `json:"settings,omitempty"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

type ProfileInput struct {
	CompanyName    string          `json:"company_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	TaxID          string          `json:"tax_id"`
	Currency       string          `json:"currency"`
	LogoURL        string          `json:"logo_url"`
	DefaultTaxRate decimal.Decimal `json:"default_tax_rate"`
	Settings       datatypes.JSON  `json:"settings"`
}

type Repository interface {
	Find(ctx context.Context, db *gorm.DB) (*Profile, error)
	Upsert(ctx context.Context, db *gorm.DB, profile *Profile) error
}

type Service interface {
	Get(ctx context.Context) (Profile, error)
	Update(ctx context.Context, req ProfileInput) (Profile, error)
}

var (
	ErrInvalidCompanyName = errors.New("invalid_company_name")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidSettings    = errors.New("invalid_settings")
	ErrNotFound           = errors.New("not_found")
)
