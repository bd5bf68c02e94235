package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/profile/domain"
	"github.com/smallbiznis/backoffice/internal/profile/repository"
	"github.com/smallbiznis/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func newTestService(t *testing.T) (domain.Service, func() int64) {
	t.Helper()

	conn := testutil.NewDB(t)
	svc := New(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, func() int64 { return testutil.Count(t, conn, "profiles", "") }
}

func TestGetMissingProfile(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUpsertsSingleRow(t *testing.T) {
	svc, count := newTestService(t)
	ctx := context.Background()

	first, err := svc.Update(ctx, domain.ProfileInput{
		CompanyName:    "Toko Maju",
		Currency:       "idr",
		DefaultTaxRate: decimal.NewFromInt(11),
	})
	require.NoError(t, err)
	assert.Equal(t, "IDR", first.Currency)
	assert.JSONEq(t, `{}`, string(first.Settings))

	second, err := svc.Update(ctx, domain.ProfileInput{
		CompanyName: "Toko Maju Jaya",
		Settings:    datatypes.JSON(`{"invoice_prefix":"INV-"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Toko Maju Jaya", second.CompanyName)
	assert.Equal(t, "USD", second.Currency)
	assert.JSONEq(t, `{"invoice_prefix":"INV-"}`, string(second.Settings))
	assert.Equal(t, int64(1), count())
}

func TestUpdateValidation(t *testing.T) {
	svc, count := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.ProfileInput{})
	require.ErrorIs(t, err, domain.ErrInvalidCompanyName)
	_, err = svc.Update(ctx, domain.ProfileInput{CompanyName: "A", Currency: "EURO"})
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
	_, err = svc.Update(ctx, domain.ProfileInput{CompanyName: "A", DefaultTaxRate: decimal.NewFromInt(101)})
	require.ErrorIs(t, err, domain.ErrInvalidTaxRate)
	_, err = svc.Update(ctx, domain.ProfileInput{CompanyName: "A", Settings: datatypes.JSON(`[1,2]`)})
	require.ErrorIs(t, err, domain.ErrInvalidSettings)
	assert.Zero(t, count())
}
