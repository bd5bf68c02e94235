package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/backoffice/internal/profile/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).Where("id = ?", domain.SingletonID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert writes the singleton row, replacing every column on conflict.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	profile.ID = domain.SingletonID
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(profile).Error
}
