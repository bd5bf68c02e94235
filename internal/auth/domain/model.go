// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a back-office account. The password hash never leaves the service.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"type:text;not null" json:"username"`
	Email        string       `gorm:"type:text;not null" json:"email"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	FullName     string       `gorm:"type:text" json:"full_name,omitempty"`
	Role         string       `gorm:"type:text;not null" json:"role"`
	Active       bool         `gorm:"not null" json:"active"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
