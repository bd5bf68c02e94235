// Package seed writes the rows a fresh install needs before the API is usable.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/backoffice/internal/auth/domain"
	"github.com/smallbiznis/backoffice/internal/auth/password"
	"github.com/smallbiznis/backoffice/internal/config"
	profiledomain "github.com/smallbiznis/backoffice/internal/profile/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultCurrency = "USD"

// Bootstrap creates the admin account and the company profile when they are
// missing. The admin is only created when both an email and a password are
// configured. Existing rows are never modified.
func Bootstrap(ctx context.Context, db *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminTx(ctx, tx, node, cfg); err != nil {
			return err
		}
		return ensureProfileTx(ctx, tx, cfg)
	})
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	username := strings.TrimSpace(cfg.AdminUsername)
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}
	if username == "" {
		username = "admin"
	}

	var count int64
	err := tx.WithContext(ctx).
		Model(&authdomain.User{}).
		Where("LOWER(username) = ? OR LOWER(email) = ?", strings.ToLower(username), email).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user := authdomain.User{
		ID:           node.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		FullName:     "Administrator",
		Role:         authdomain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&user).Error
}

func ensureProfileTx(ctx context.Context, tx *gorm.DB, cfg config.BootstrapConfig) error {
	name := strings.TrimSpace(cfg.CompanyName)
	if name == "" {
		return nil
	}

	var profile profiledomain.Profile
	err := tx.WithContext(ctx).Where("id = ?", profiledomain.SingletonID).First(&profile).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	profile = profiledomain.Profile{
		ID:          profiledomain.SingletonID,
		CompanyName: name,
		Currency:    defaultCurrency,
		Settings:    datatypes.JSON("{}"),
		UpdatedAt:   time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&profile).Error
}
