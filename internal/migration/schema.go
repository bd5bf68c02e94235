package migration

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// The structs below describe the schema for dialects migrated with gorm's
// AutoMigrate (mysql and sqlite). They mirror migrations/*.sql and carry the
// belongs-to associations gorm needs to emit the foreign keys.

type customerTable struct {
	ID        int64   `gorm:"primaryKey;autoIncrement:false"`
	Name      string  `gorm:"type:varchar(255);not null"`
	Email     *string `gorm:"type:varchar(255);uniqueIndex"`
	Phone     string  `gorm:"type:varchar(64)"`
	Address   string  `gorm:"type:text"`
	City      string  `gorm:"type:varchar(128)"`
	TaxID     string  `gorm:"type:varchar(64)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (customerTable) TableName() string { return "customers" }

type categoryTable struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (categoryTable) TableName() string { return "categories" }

type unitTable struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Symbol    string `gorm:"type:varchar(32)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (unitTable) TableName() string { return "units" }

type productTable struct {
	ID            int64          `gorm:"primaryKey;autoIncrement:false"`
	Name          string         `gorm:"type:varchar(255);not null"`
	SKU           string         `gorm:"column:sku;type:varchar(128);not null;uniqueIndex"`
	Description   string         `gorm:"type:text"`
	CategoryID    *int64         `gorm:"index"`
	Category      *categoryTable `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Unit          string         `gorm:"type:varchar(255);index"`
	Price         decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Cost          decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	StockQuantity decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"`
	MinStock      decimal.Decimal `gorm:"type:numeric(15,3);not null;default:0"`
	Status        string         `gorm:"type:varchar(16);not null;default:active"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (productTable) TableName() string { return "products" }

// DocumentHeader holds the columns shared by invoices and quotations.
type DocumentHeader struct {
	ID             int64           `gorm:"primaryKey;autoIncrement:false"`
	Number         string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	CustomerID     int64           `gorm:"not null;index"`
	Customer       *customerTable  `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	IssueDate      time.Time       `gorm:"type:date;not null"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	DiscountRate   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Status         string          `gorm:"type:varchar(16);not null;default:draft"`
	Notes          string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
}

type invoiceTable struct {
	DocumentHeader `gorm:"embedded"`
	DueDate        *time.Time `gorm:"type:date"`
}

func (invoiceTable) TableName() string { return "invoices" }

type quotationTable struct {
	DocumentHeader `gorm:"embedded"`
	ExpiryDate     *time.Time `gorm:"type:date"`
}

func (quotationTable) TableName() string { return "quotations" }

// DocumentLine holds the columns shared by invoice and quotation items.
type DocumentLine struct {
	ProductID   *int64          `gorm:"index"`
	Product     *productTable   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Description string          `gorm:"type:text"`
	Quantity    decimal.Decimal `gorm:"type:numeric(15,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Position    int             `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

type invoiceItemTable struct {
	ID           int64         `gorm:"primaryKey;autoIncrement:false"`
	InvoiceID    int64         `gorm:"not null;index"`
	Invoice      *invoiceTable `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	DocumentLine `gorm:"embedded"`
}

func (invoiceItemTable) TableName() string { return "invoice_items" }

type quotationItemTable struct {
	ID           int64           `gorm:"primaryKey;autoIncrement:false"`
	QuotationID  int64           `gorm:"not null;index"`
	Quotation    *quotationTable `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	DocumentLine `gorm:"embedded"`
}

func (quotationItemTable) TableName() string { return "quotation_items" }

type inventoryTransactionTable struct {
	ID            int64           `gorm:"primaryKey;autoIncrement:false"`
	ProductID     int64           `gorm:"not null;index"`
	Product       *productTable   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Type          string          `gorm:"type:varchar(16);not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(15,3);not null"`
	ReferenceType string          `gorm:"type:varchar(16);not null;index:idx_inventory_reference"`
	ReferenceID   *int64          `gorm:"index:idx_inventory_reference"`
	Notes         string          `gorm:"type:text"`
	CreatedAt     time.Time
}

func (inventoryTransactionTable) TableName() string { return "inventory_transactions" }

type userTable struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	Username     string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:text;not null"`
	FullName     string `gorm:"type:varchar(255)"`
	Role         string `gorm:"type:varchar(32);not null;default:staff"`
	Active       bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userTable) TableName() string { return "users" }

type profileTable struct {
	ID             int64           `gorm:"primaryKey;autoIncrement:false"`
	CompanyName    string          `gorm:"type:varchar(255);not null"`
	Email          string          `gorm:"type:varchar(255)"`
	Phone          string          `gorm:"type:varchar(64)"`
	Address        string          `gorm:"type:text"`
	TaxID          string          `gorm:"type:varchar(64)"`
	Currency       string          `gorm:"type:varchar(3);not null;default:USD"`
	LogoURL        string          `gorm:"type:text"`
	DefaultTaxRate decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Settings       datatypes.JSON
	UpdatedAt      time.Time
}

func (profileTable) TableName() string { return "profiles" }

// tables is ordered parents first.
func tables() []interface{} {
	return []interface{}{
		&customerTable{},
		&categoryTable{},
		&unitTable{},
		&productTable{},
		&invoiceTable{},
		&invoiceItemTable{},
		&quotationTable{},
		&quotationItemTable{},
		&inventoryTransactionTable{},
		&userTable{},
		&profileTable{},
	}
}
