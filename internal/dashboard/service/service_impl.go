package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/cache"
	"github.com/smallbiznis/backoffice/internal/clock"
	"github.com/smallbiznis/backoffice/internal/config"
	"github.com/smallbiznis/backoffice/internal/dashboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statsCacheKey = "dashboard:stats"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Clock    clock.Clock
	Settings *config.SettingsHolder
	Cache    cache.Store `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	clock    clock.Clock
	settings *config.SettingsHolder
	cache    cache.Store
}

func New(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("dashboard.service"),
		repo:     p.Repo,
		clock:    p.Clock,
		settings: p.Settings,
		cache:    p.Cache,
	}
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	cfg := s.settings.Get().Dashboard

	if stats, ok := s.cached(ctx); ok {
		return stats, nil
	}

	stats, err := s.compute(ctx, cfg)
	if err != nil {
		return domain.Stats{}, err
	}

	if s.cache != nil && cfg.CacheTTL > 0 {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, cfg.CacheTTL); err != nil {
				s.log.Warn("cache dashboard stats", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached stats. Cache failures are logged and ignored.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.log.Warn("invalidate dashboard stats", zap.Error(err))
	}
}

func (s *Service) cached(ctx context.Context) (domain.Stats, bool) {
	if s.cache == nil {
		return domain.Stats{}, false
	}
	payload, ok, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		s.log.Warn("read cached dashboard stats", zap.Error(err))
		return domain.Stats{}, false
	}
	if !ok {
		return domain.Stats{}, false
	}
	var stats domain.Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return domain.Stats{}, false
	}
	return stats, true
}

func (s *Service) compute(ctx context.Context, cfg config.DashboardSettings) (domain.Stats, error) {
	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dailyStart := today.AddDate(0, 0, -(cfg.DailyWindow - 1))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(cfg.MonthlyWindow - 1), 0)

	since := dailyStart
	if monthStart.Before(since) {
		since = monthStart
	}

	totals, err := s.repo.Totals(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}
	recentInvoices, err := s.repo.RecentInvoices(ctx, s.db, cfg.RecentLimit)
	if err != nil {
		return domain.Stats{}, err
	}
	recentCustomers, err := s.repo.RecentCustomers(ctx, s.db, cfg.RecentLimit)
	if err != nil {
		return domain.Stats{}, err
	}
	sales, err := s.repo.SalesSince(ctx, s.db, since)
	if err != nil {
		return domain.Stats{}, err
	}

	if recentInvoices == nil {
		recentInvoices = []domain.RecentInvoice{}
	}
	if recentCustomers == nil {
		recentCustomers = []domain.RecentCustomer{}
	}

	return domain.Stats{
		TotalSales:       totals.TotalSales,
		TotalInvoices:    totals.TotalInvoices,
		TotalCustomers:   totals.TotalCustomers,
		TotalProducts:    totals.TotalProducts,
		LowStockProducts: totals.LowStockProducts,
		RecentInvoices:   recentInvoices,
		RecentCustomers:  recentCustomers,
		DailySales:       DailySeries(sales, dailyStart, cfg.DailyWindow),
		MonthlyRevenue:   MonthlySeries(sales, monthStart, cfg.MonthlyWindow),
		GeneratedAt:      now,
	}, nil
}

// DailySeries buckets rows into days consecutive calendar days from start,
// emitting a zero point for days without sales.
func DailySeries(rows []domain.SaleRow, start time.Time, days int) []domain.Point {
	points := make([]domain.Point, days)
	index := make(map[string]int, days)
	for i := range points {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = domain.Point{Date: key, Total: decimal.Zero}
		index[key] = i
	}
	for _, row := range rows {
		if i, ok := index[row.IssueDate.UTC().Format("2006-01-02")]; ok {
			points[i].Total = points[i].Total.Add(row.Total)
			points[i].Count++
		}
	}
	return points
}

// MonthlySeries buckets rows into months consecutive months from start.
func MonthlySeries(rows []domain.SaleRow, start time.Time, months int) []domain.Point {
	points := make([]domain.Point, months)
	index := make(map[string]int, months)
	for i := range points {
		key := start.AddDate(0, i, 0).Format("2006-01")
		points[i] = domain.Point{Date: key, Total: decimal.Zero}
		index[key] = i
	}
	for _, row := range rows {
		if i, ok := index[row.IssueDate.UTC().Format("2006-01")]; ok {
			points[i].Total = points[i].Total.Add(row.Total)
			points[i].Count++
		}
	}
	return points
}
