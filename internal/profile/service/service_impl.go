package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/backoffice/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var maxTaxRate = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("profile.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context) (domain.Profile, error) {
	profile, err := s.repo.Find(ctx, s.db)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) Update(ctx context.Context, req domain.ProfileInput) (domain.Profile, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return domain.Profile{}, domain.ErrInvalidCompanyName
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return domain.Profile{}, domain.ErrInvalidCurrency
	}
	if req.DefaultTaxRate.IsNegative() || req.DefaultTaxRate.GreaterThan(maxTaxRate) {
		return domain.Profile{}, domain.ErrInvalidTaxRate
	}
	settings, err := normalizeSettings(req.Settings)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := domain.Profile{
		CompanyName:    name,
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		TaxID:          strings.TrimSpace(req.TaxID),
		Currency:       currency,
		LogoURL:        strings.TrimSpace(req.LogoURL),
		DefaultTaxRate: req.DefaultTaxRate,
		Settings:       settings,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, s.db, &profile); err != nil {
		s.log.Error("profile upsert failed", zap.Error(err))
		return domain.Profile{}, err
	}
	return s.Get(ctx)
}

// normalizeSettings requires a JSON object and defaults to {}.
func normalizeSettings(raw datatypes.JSON) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON("{}"), nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, domain.ErrInvalidSettings
	}
	return raw, nil
}
