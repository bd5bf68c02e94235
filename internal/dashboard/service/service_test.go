package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/cache"
	"github.com/smallbiznis/backoffice/internal/clock"
	"github.com/smallbiznis/backoffice/internal/config"
	"github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"github.com/smallbiznis/backoffice/internal/dashboard/repository"
	"github.com/smallbiznis/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  *Service
}

func newFixture(t *testing.T, store cache.Store, fn func(*config.Settings)) fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		Repo:     repository.Provide(),
		Clock:    clock.NewFakeClock(now),
		Settings: testutil.Settings(fn),
		Cache:    store,
	})
	return fixture{db: conn, node: node, svc: svc}
}

func (f fixture) invoice(t *testing.T, customerID snowflake.ID, number string, issued time.Time, total int64, status string) {
	t.Helper()

	err := f.db.Exec(
		`INSERT INTO invoices (id, number, customer_id, issue_date, subtotal, tax_rate, tax_amount, discount_rate, discount_amount, total, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, 0, 0, ?, ?, ?, ?)`,
		f.node.Generate(), number, customerID, issued, decimal.NewFromInt(total), decimal.NewFromInt(total), status, issued, issued,
	).Error
	require.NoError(t, err)
}

func TestStatsAggregates(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	customerID := testutil.InsertCustomer(t, f.db, f.node, "Acme", "ops@acme.com")
	testutil.InsertCustomer(t, f.db, f.node, "Globex", "")
	lowID := testutil.InsertProduct(t, f.db, f.node, "SKU-LOW", decimal.NewFromInt(1))
	require.NoError(t, f.db.Exec(`UPDATE products SET min_stock = 5 WHERE id = ?`, lowID).Error)
	testutil.InsertProduct(t, f.db, f.node, "SKU-OK", decimal.NewFromInt(50))

	f.invoice(t, customerID, "INV-1", now, 100, "paid")
	f.invoice(t, customerID, "INV-2", now.AddDate(0, 0, -1), 50, "sent")
	f.invoice(t, customerID, "INV-3", now, 999, "cancelled")

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(150).Equal(stats.TotalSales))
	assert.Equal(t, int64(3), stats.TotalInvoices)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockProducts)
	assert.Len(t, stats.RecentInvoices, 3)
	assert.Equal(t, "Acme", stats.RecentInvoices[0].CustomerName)
	assert.Len(t, stats.RecentCustomers, 2)

	cfg := config.DefaultSettings().Dashboard
	require.Len(t, stats.DailySales, cfg.DailyWindow)
	last := stats.DailySales[len(stats.DailySales)-1]
	assert.Equal(t, "2024-03-15", last.Date)
	assert.True(t, decimal.NewFromInt(100).Equal(last.Total))
	assert.Equal(t, int64(1), last.Count)

	require.Len(t, stats.MonthlyRevenue, cfg.MonthlyWindow)
	month := stats.MonthlyRevenue[len(stats.MonthlyRevenue)-1]
	assert.Equal(t, "2024-03", month.Date)
	assert.True(t, decimal.NewFromInt(150).Equal(month.Total))
	assert.Equal(t, now, stats.GeneratedAt)
}

func TestStatsEmptyDatabase(t *testing.T) {
	f := newFixture(t, nil, nil)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.TotalSales.IsZero())
	assert.Empty(t, stats.RecentInvoices)
	assert.NotNil(t, stats.RecentInvoices)
	for _, p := range stats.DailySales {
		assert.True(t, p.Total.IsZero())
	}
}

func TestRecentLimitFromSettings(t *testing.T) {
	f := newFixture(t, nil, func(s *config.Settings) { s.Dashboard.RecentLimit = 1 })

	customerID := testutil.InsertCustomer(t, f.db, f.node, "Acme", "")
	f.invoice(t, customerID, "INV-1", now, 10, "paid")
	f.invoice(t, customerID, "INV-2", now, 10, "paid")

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.RecentInvoices, 1)
}

func TestStatsCachedUntilInvalidated(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newFixture(t, store, func(s *config.Settings) { s.Dashboard.CacheTTL = time.Minute })
	ctx := context.Background()

	customerID := testutil.InsertCustomer(t, f.db, f.node, "Acme", "")
	f.invoice(t, customerID, "INV-1", now, 10, "paid")

	first, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalInvoices)

	f.invoice(t, customerID, "INV-2", now, 10, "paid")
	cached, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.TotalInvoices)

	f.svc.Invalidate(ctx)
	fresh, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalInvoices)
}

func TestDailySeriesFillsGaps(t *testing.T) {
	start := time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC)
	rows := []domain.SaleRow{
		{IssueDate: time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(5)},
		{IssueDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(7)},
		{IssueDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(3)},
		{IssueDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(100)},
	}

	points := DailySeries(rows, start, 3)
	require.Len(t, points, 3)
	assert.Equal(t, "2024-01-30", points[0].Date)
	assert.Equal(t, "2024-01-31", points[1].Date)
	assert.True(t, points[1].Total.IsZero())
	assert.Equal(t, "2024-02-01", points[2].Date)
	assert.True(t, decimal.NewFromInt(10).Equal(points[2].Total))
	assert.Equal(t, int64(2), points[2].Count)
}

func TestMonthlySeriesCrossesYear(t *testing.T) {
	start := time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.SaleRow{
		{IssueDate: time.Date(2023, time.December, 24, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(20)},
		{IssueDate: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(30)},
	}

	points := MonthlySeries(rows, start, 3)
	require.Len(t, points, 3)
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01"}, []string{points[0].Date, points[1].Date, points[2].Date})
	assert.True(t, points[0].Total.IsZero())
	assert.True(t, decimal.NewFromInt(20).Equal(points[1].Total))
	assert.True(t, decimal.NewFromInt(30).Equal(points[2].Total))
}
