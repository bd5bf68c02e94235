package domain

import "context"

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	// Login checks the password and returns the user. No session is issued.
	Login(ctx context.Context, req LoginRequest) (*User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}

type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// LoginRequest identifies the account by username or email.
type LoginRequest struct {
	Login    string
	Password string
}

type ChangePasswordRequest struct {
	Login       string
	OldPassword string
	NewPassword string
}
