package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *User) error
	// FindByLogin matches either the username or the email.
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	UpdatePassword(ctx context.Context, id snowflake.ID, hash string, at time.Time) error
	TouchLastLogin(ctx context.Context, id snowflake.ID, at time.Time) error
}
