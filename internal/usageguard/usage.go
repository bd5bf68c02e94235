// Package usageguard decides whether a reference entity can be deleted by
// counting the rows that still point at it.
package usageguard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Kind string

const (
	KindCustomer Kind = "customer"
	KindCategory Kind = "category"
	KindUnit     Kind = "unit"
)

var (
	ErrUnknownKind = errors.New("unknown_usage_kind")
	ErrNotFound    = errors.New("not_found")
)

// Usage is the outcome of a check. Details lists each non-zero reference
// count, for example "2 invoice(s)".
type Usage struct {
	CanDelete    bool     `json:"canDelete"`
	UsageDetails []string `json:"usageDetails"`
}

// InUseError is returned by deletes the guard refused.
type InUseError struct {
	Kind    Kind
	Details []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is being used in: %s", e.Label(), strings.Join(e.Details, ", "))
}

// Label is the capitalized entity name.
func (e *InUseError) Label() string {
	k := string(e.Kind)
	if k == "" {
		return ""
	}
	return strings.ToUpper(k[:1]) + k[1:]
}

type reference struct {
	table  string
	column string
	noun   string
}

// what points at each kind; the unit kind matches on products.unit = units.name
var references = map[Kind][]reference{
	KindCustomer: {
		{table: "invoices", column: "customer_id", noun: "invoice"},
		{table: "quotations", column: "customer_id", noun: "quotation"},
	},
	KindCategory: {
		{table: "products", column: "category_id", noun: "product"},
	},
	KindUnit: {
		{table: "products", column: "unit", noun: "product"},
	},
}

var ownTables = map[Kind]string{
	KindCustomer: "customers",
	KindCategory: "categories",
	KindUnit:     "units",
}

type Guard struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Guard {
	return &Guard{log: log.Named("usageguard")}
}

// CheckUsage counts references to the entity on db, which may be a transaction.
func (g *Guard) CheckUsage(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (Usage, error) {
	refs, ok := references[kind]
	if !ok {
		return Usage{}, ErrUnknownKind
	}

	key, err := g.lookupKey(ctx, db, kind, id)
	if err != nil {
		return Usage{}, err
	}

	usage := Usage{CanDelete: true, UsageDetails: []string{}}
	for _, ref := range refs {
		var count int64
		if err := db.WithContext(ctx).Table(ref.table).Where(ref.column+" = ?", key).Count(&count).Error; err != nil {
			return Usage{}, err
		}
		if count > 0 {
			usage.CanDelete = false
			usage.UsageDetails = append(usage.UsageDetails, fmt.Sprintf("%d %s(s)", count, ref.noun))
		}
	}
	return usage, nil
}

// Ensure returns an *InUseError when the entity is still referenced.
func (g *Guard) Ensure(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) error {
	usage, err := g.CheckUsage(ctx, db, kind, id)
	if err != nil {
		return err
	}
	if !usage.CanDelete {
		g.log.Info("delete refused",
			zap.String("kind", string(kind)),
			zap.String("id", id.String()),
			zap.Strings("usage", usage.UsageDetails),
		)
		return &InUseError{Kind: kind, Details: usage.UsageDetails}
	}
	return nil
}

// lookupKey confirms the entity exists and returns the value references match on.
func (g *Guard) lookupKey(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (interface{}, error) {
	if kind == KindUnit {
		var names []string
		if err := db.WithContext(ctx).Table(ownTables[kind]).Where("id = ?", id).Limit(1).Pluck("name", &names).Error; err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, ErrNotFound
		}
		return names[0], nil
	}

	var count int64
	if err := db.WithContext(ctx).Table(ownTables[kind]).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return id, nil
}
