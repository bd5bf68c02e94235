package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/customer/domain"
	"github.com/smallbiznis/backoffice/internal/customer/repository"
	"github.com/smallbiznis/backoffice/internal/testutil"
	"github.com/smallbiznis/backoffice/internal/usageguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

type fixture struct {
	db          *gorm.DB
	node        *snowflake.Node
	svc         domain.Service
	invalidator *countingInvalidator
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	inv := &countingInvalidator{}
	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		Guard:       usageguard.New(zap.NewNop()),
		Invalidator: inv,
	})
	return fixture{db: conn, node: node, svc: svc, invalidator: inv}
}

func insertInvoice(t *testing.T, f fixture, customerID snowflake.ID, number string) {
	t.Helper()

	now := time.Now().UTC()
	err := f.db.Exec(
		`INSERT INTO invoices (id, number, customer_id, issue_date, subtotal, tax_rate, tax_amount, discount_rate, discount_amount, total, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0, 0, 'draft', ?, ?)`,
		f.node.Generate(), number, customerID, now, now, now,
	).Error
	require.NoError(t, err)
}

func TestCreateNormalizesInput(t *testing.T) {
	f := newFixture(t)

	customer, err := f.svc.Create(context.Background(), domain.CustomerInput{
		Name:  "  Acme Corp ",
		Email: " Billing@Acme.COM ",
		City:  " Jakarta",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", customer.Name)
	require.NotNil(t, customer.Email)
	assert.Equal(t, "billing@acme.com", *customer.Email)
	assert.Equal(t, "Jakarta", customer.City)
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CustomerInput{Name: ""})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CustomerInput{Name: "Acme", Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CustomerInput{Name: "Acme", Email: "a@acme.com"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CustomerInput{Name: "Acme Two", Email: "A@acme.com"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCustomersWithoutEmailDoNotCollide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, domain.CustomerInput{Name: "Walk-in"})
	require.NoError(t, err)
	assert.Nil(t, first.Email)

	_, err = f.svc.Create(ctx, domain.CustomerInput{Name: "Walk-in 2"})
	require.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, domain.CustomerInput{Name: "Acme"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, customer.ID.String(), domain.CustomerInput{Name: "Acme Ltd", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	assert.Equal(t, "555", updated.Phone)

	_, err = f.svc.Update(ctx, f.node.Generate().String(), domain.CustomerInput{Name: "Ghost"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSearchesNameAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CustomerInput{Name: "Acme", Email: "ops@acme.com"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CustomerInput{Name: "Globex", Email: "hello@globex.io"})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListCustomerRequest{Search: "GLOBEX"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Globex", resp.Customers[0].Name)

	resp, err = f.svc.List(ctx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, 10, resp.Pagination.Limit)
}

func TestDeleteRefusedWhileInvoicesExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, domain.CustomerInput{Name: "Acme"})
	require.NoError(t, err)
	insertInvoice(t, f, customer.ID, "INV-1")
	insertInvoice(t, f, customer.ID, "INV-2")

	usage, err := f.svc.Usage(ctx, customer.ID.String())
	require.NoError(t, err)
	assert.False(t, usage.CanDelete)
	assert.Equal(t, []string{"2 invoice(s)"}, usage.UsageDetails)

	err = f.svc.Delete(ctx, customer.ID.String())
	var inUse *usageguard.InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "Customer", inUse.Label())

	_, err = f.svc.GetByID(ctx, customer.ID.String())
	require.NoError(t, err)
}

func TestDeleteUnreferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, domain.CustomerInput{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, customer.ID.String()))
	assert.Equal(t, 2, f.invalidator.calls)

	_, err = f.svc.GetByID(ctx, customer.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Usage(ctx, customer.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvalidID(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.svc.Delete(context.Background(), "nope"), domain.ErrInvalidID)
}
