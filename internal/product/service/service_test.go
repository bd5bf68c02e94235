package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	inventorydomain "github.com/smallbiznis/backoffice/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/backoffice/internal/inventory/repository"
	inventoryservice "github.com/smallbiznis/backoffice/internal/inventory/service"
	"github.com/smallbiznis/backoffice/internal/product/domain"
	"github.com/smallbiznis/backoffice/internal/product/repository"
	"github.com/smallbiznis/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	inv := inventoryservice.New(inventoryservice.Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     inventoryrepo.Provide(),
		Settings: testutil.Settings(nil),
	})
	svc := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Inventory: inv,
	})
	return fixture{db: conn, node: node, svc: svc}
}

func qty(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func (f fixture) category(t *testing.T, name string) snowflake.ID {
	t.Helper()

	id := f.node.Generate()
	now := time.Now().UTC()
	require.NoError(t, f.db.Exec(
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`, id, name, now, now,
	).Error)
	return id
}

func TestCreateBooksOpeningStock(t *testing.T) {
	f := newFixture(t)
	categoryID := f.category(t, "Beverages")

	product, err := f.svc.Create(context.Background(), domain.ProductInput{
		Name:          "Cola",
		SKU:           "COLA-330",
		CategoryID:    categoryID.String(),
		Unit:          "can",
		Price:         decimal.RequireFromString("1.50"),
		Cost:          decimal.RequireFromString("0.80"),
		StockQuantity: qty(24),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, product.Status)
	assert.Equal(t, "Beverages", product.CategoryName)
	assert.True(t, decimal.NewFromInt(24).Equal(product.StockQuantity))

	assert.Equal(t, int64(1), testutil.Count(t, f.db, "inventory_transactions",
		"product_id = ? AND type = ? AND reference_type = ?", product.ID, inventorydomain.MovementIn, inventorydomain.ReferenceInitial))
}

func TestCreateWithoutStockWritesNoLedgerRow(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.ProductInput{Name: "Service", SKU: "SVC-1"})
	require.NoError(t, err)
	assert.Zero(t, testutil.Count(t, f.db, "inventory_transactions", ""))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   domain.ProductInput
		err  error
	}{
		{"missing name", domain.ProductInput{SKU: "A"}, domain.ErrInvalidName},
		{"missing sku", domain.ProductInput{Name: "A"}, domain.ErrInvalidSKU},
		{"negative price", domain.ProductInput{Name: "A", SKU: "A", Price: decimal.NewFromInt(-1)}, domain.ErrInvalidPrice},
		{"negative stock", domain.ProductInput{Name: "A", SKU: "A", StockQuantity: qty(-1)}, domain.ErrInvalidStock},
		{"bad status", domain.ProductInput{Name: "A", SKU: "A", Status: "archived"}, domain.ErrInvalidStatus},
		{"bad category", domain.ProductInput{Name: "A", SKU: "A", CategoryID: "x"}, domain.ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.in)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.ProductInput{
		Name:       "Cola",
		SKU:        "COLA",
		CategoryID: f.node.Generate().String(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.ProductInput{Name: "Cola", SKU: "COLA"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.ProductInput{Name: "Cola 2", SKU: "COLA"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUpdateBooksStockDifference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.Create(ctx, domain.ProductInput{Name: "Cola", SKU: "COLA", StockQuantity: qty(10)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, product.ID.String(), domain.ProductInput{
		Name:          "Cola Zero",
		SKU:           "COLA",
		StockQuantity: qty(7),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", updated.Name)
	assert.True(t, decimal.NewFromInt(7).Equal(updated.StockQuantity))

	var row inventorydomain.Transaction
	require.NoError(t, f.db.Where("product_id = ? AND type = ?", product.ID, inventorydomain.MovementAdjustment).First(&row).Error)
	assert.True(t, decimal.NewFromInt(-3).Equal(row.Quantity))
	assert.Equal(t, "product updated", row.Notes)
}

func TestUpdateWithoutStockKeepsLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.Create(ctx, domain.ProductInput{Name: "Cola", SKU: "COLA", StockQuantity: qty(10)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, product.ID.String(), domain.ProductInput{Name: "Cola", SKU: "COLA", Status: domain.StatusInactive})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, updated.Status)
	assert.True(t, decimal.NewFromInt(10).Equal(updated.StockQuantity))
	assert.Equal(t, int64(1), testutil.Count(t, f.db, "inventory_transactions", ""))
}

func TestUpdateMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), f.node.Generate().String(), domain.ProductInput{Name: "A", SKU: "A"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCascadesLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.Create(ctx, domain.ProductInput{Name: "Cola", SKU: "COLA", StockQuantity: qty(3)})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, product.ID.String()))
	assert.Zero(t, testutil.Count(t, f.db, "inventory_transactions", ""))
	require.ErrorIs(t, f.svc.Delete(ctx, product.ID.String()), domain.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drinks := f.category(t, "Drinks")

	_, err := f.svc.Create(ctx, domain.ProductInput{Name: "Cola", SKU: "COLA", CategoryID: drinks.String(), StockQuantity: qty(1), MinStock: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.ProductInput{Name: "Water", SKU: "H2O", CategoryID: drinks.String(), StockQuantity: qty(50), MinStock: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.ProductInput{Name: "Chips", SKU: "CHP", Status: domain.StatusInactive})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListProductRequest{Search: "h2o"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Water", resp.Products[0].Name)
	assert.Equal(t, "Drinks", resp.Products[0].CategoryName)

	resp, err = f.svc.List(ctx, domain.ListProductRequest{CategoryID: drinks.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total)

	resp, err = f.svc.List(ctx, domain.ListProductRequest{Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Chips", resp.Products[0].Name)

	resp, err = f.svc.List(ctx, domain.ListProductRequest{LowStock: true, Status: "active"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Cola", resp.Products[0].Name)

	_, err = f.svc.List(ctx, domain.ListProductRequest{Status: "gone"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
