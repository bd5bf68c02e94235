package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/backoffice/internal/auth/domain"
	"github.com/smallbiznis/backoffice/internal/auth/password"
	obsmetrics "github.com/smallbiznis/backoffice/internal/observability/metrics"
	"github.com/smallbiznis/backoffice/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	Log        *zap.Logger
	Repo       domain.Repository
	GenID      *snowflake.Node
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	repo       domain.Repository
	genID      *snowflake.Node
	obsMetrics *obsmetrics.Metrics
	hash       func(string) (string, error)
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("auth.service"),
		repo:       p.Repo,
		genID:      p.GenID,
		obsMetrics: p.ObsMetrics,
		hash:       password.Hash,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.ContainsAny(username, " @") {
		return nil, domain.ErrInvalidUsername
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	for _, login := range []string{username, email} {
		if _, err := s.repo.FindByLogin(ctx, login); err == nil {
			return nil, domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleStaff
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", role))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	user, err := s.authenticate(ctx, req.Login, req.Password)
	if err != nil {
		s.obsMetrics.RecordLogin(ctx, "failure")
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	s.obsMetrics.RecordLogin(ctx, "success")
	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	user, err := s.authenticate(ctx, req.Login, req.OldPassword)
	if err != nil {
		return err
	}
	if len(req.NewPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	hashed, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hashed, time.Now().UTC()); err != nil {
		return err
	}

	s.log.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// authenticate hides whether the account exists behind ErrInvalidCredentials.
func (s *Service) authenticate(ctx context.Context, login, pass string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || pass == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !password.Verify(pass, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
