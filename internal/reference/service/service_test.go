package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/reference/domain"
	"github.com/smallbiznis/backoffice/internal/reference/repository"
	"github.com/smallbiznis/backoffice/internal/testutil"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	categories domain.CategoryService
	units      domain.UnitService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	p := Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Guard: usageguard.New(zap.NewNop()),
	}
	return fixture{
		db:         conn,
		node:       node,
		categories: NewCategoryService(p),
		units:      NewUnitService(p),
	}
}

func TestCategoryCreateRejectsBlankName(t *testing.T) {
	f := newFixture(t)

	_, err := f.categories.Create(context.Background(), domain.CategoryInput{Name: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestCategoryDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, domain.CategoryInput{Name: "Beverages"})
	require.NoError(t, err)

	_, err = f.categories.Create(ctx, domain.CategoryInput{Name: "Beverages"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategoryListSearchAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Snacks", "Beverages", "Bakery"} {
		_, err := f.categories.Create(ctx, domain.CategoryInput{Name: name})
		require.NoError(t, err)
	}

	resp, err := f.categories.List(ctx, domain.ListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "Bakery", resp.Categories[0].Name)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	resp, err = f.categories.List(ctx, domain.ListRequest{Search: "bev"})
	require.NoError(t, err)
	require.Len(t, resp.Categories, 1)
	assert.Equal(t, "Beverages", resp.Categories[0].Name)
}

func TestCategoryDeleteRefusedWhileProductsReferenceIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.categories.Create(ctx, domain.CategoryInput{Name: "Beverages"})
	require.NoError(t, err)
	productID := testutil.InsertProduct(t, f.db, f.node, "SKU-1", decimal.Zero)
	require.NoError(t, f.db.Exec(`UPDATE products SET category_id = ? WHERE id = ?`, category.ID, productID).Error)

	usage, err := f.categories.Usage(ctx, category.ID.String())
	require.NoError(t, err)
	assert.False(t, usage.CanDelete)
	assert.Equal(t, []string{"1 product(s)"}, usage.UsageDetails)

	err = f.categories.Delete(ctx, category.ID.String())
	var inUse *usageguard.InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "Category is being used in: 1 product(s)", inUse.Error())
	assert.Equal(t, int64(1), testutil.Count(t, f.db, "categories", ""))
}

func TestCategoryDeleteUnused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.categories.Create(ctx, domain.CategoryInput{Name: "Beverages"})
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, category.ID.String()))
	_, err = f.categories.GetByID(ctx, category.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = f.categories.Delete(ctx, category.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryInvalidID(t *testing.T) {
	f := newFixture(t)

	_, err := f.categories.GetByID(context.Background(), "abc")
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUnitRenameCarriesOverToProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unit, err := f.units.Create(ctx, domain.UnitInput{Name: "pcs", Symbol: "pc"})
	require.NoError(t, err)
	testutil.InsertProduct(t, f.db, f.node, "SKU-1", decimal.Zero)

	updated, err := f.units.Update(ctx, unit.ID.String(), domain.UnitInput{Name: "pieces", Symbol: "pc"})
	require.NoError(t, err)
	assert.Equal(t, "pieces", updated.Name)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, "products", "unit = ?", "pieces"))
	assert.Zero(t, testutil.Count(t, f.db, "products", "unit = ?", "pcs"))
}

func TestUnitDeleteRefusedByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unit, err := f.units.Create(ctx, domain.UnitInput{Name: "pcs"})
	require.NoError(t, err)
	testutil.InsertProduct(t, f.db, f.node, "SKU-1", decimal.Zero)
	testutil.InsertProduct(t, f.db, f.node, "SKU-2", decimal.Zero)

	err = f.units.Delete(ctx, unit.ID.String())
	var inUse *usageguard.InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, []string{"2 product(s)"}, inUse.Details)

	other, err := f.units.Create(ctx, domain.UnitInput{Name: "kg"})
	require.NoError(t, err)
	require.NoError(t, f.units.Delete(ctx, other.ID.String()))
}

func TestUnitUpdateMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.units.Update(context.Background(), f.node.Generate().String(), domain.UnitInput{Name: "kg"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
