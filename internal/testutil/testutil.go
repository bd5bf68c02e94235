// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/config"
	"github.com/smallbiznis/backoffice/internal/migration"
	"github.com/smallbiznis/backoffice/pkg/db"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func NewNode(t testing.TB) *snowflake.Node {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	return node
}

// Settings returns a holder with default settings, optionally modified by fn.
func Settings(fn func(*config.Settings)) *config.SettingsHolder {
	s := config.DefaultSettings()
	if fn != nil {
		fn(&s)
	}
	return config.StaticSettings(s)
}

func InsertCustomer(t testing.TB, conn *gorm.DB, node *snowflake.Node, name, email string) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	var emailArg interface{}
	if email != "" {
		emailArg = email
	}
	err := conn.Exec(
		`INSERT INTO customers (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, emailArg, now, now,
	).Error
	if err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}
	return id
}

func InsertProduct(t testing.TB, conn *gorm.DB, node *snowflake.Node, sku string, stock decimal.Decimal) snowflake.ID {
	t.Helper()

	id := node.Generate()
	now := time.Now().UTC()
	err := conn.Exec(
		`INSERT INTO products (id, name, sku, unit, price, cost, stock_quantity, min_stock, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "Product "+sku, sku, "pcs", decimal.NewFromInt(10), decimal.NewFromInt(6), stock, decimal.Zero, "active", now, now,
	).Error
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return id
}

// Stock reads a product's stock_quantity.
func Stock(t testing.TB, conn *gorm.DB, id snowflake.ID) decimal.Decimal {
	t.Helper()

	var stock decimal.Decimal
	if err := conn.Raw(`SELECT stock_quantity FROM products WHERE id = ?`, id).Row().Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// Count runs SELECT COUNT(*) on table with an optional where clause.
func Count(t testing.TB, conn *gorm.DB, table, where string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	stmt := conn.Table(table)
	if where != "" {
		stmt = stmt.Where(where, args...)
	}
	if err := stmt.Count(&n).Error; err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
