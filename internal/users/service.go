package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/pedidoflow/pedidoflow/internal/observability"
	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
	"github.com/pedidoflow/pedidoflow/internal/shared"
)

// CreateRequest is the payload for provisioning an account.
type CreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Nome     string `json:"nome" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=vendor admin"`
	Password string `json:"password" validate:"required,min=8"`
}

// SetPasswordRequest carries the replacement password an admin sets.
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// ResetMailer enqueues password-reset e-mails. Satisfied by
// jobs.Enqueuer.
type ResetMailer interface {
	PasswordResetRequested(ctx context.Context, user *User) error
}

// Service manages accounts.
type Service struct {
	repo     Repository
	mailer   ResetMailer
	metrics  *observability.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs a Service. Mailer and metrics may be nil.
func NewService(repo Repository, mailer ResetMailer, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
	}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get loads one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, httpx.ErrNotFound
	}
	return user, err
}

// Create provisions an account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		Nome:         req.Nome,
		Role:         req.Role,
		IsActive:     true,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword replaces the account password with a fresh bcrypt hash.
// Reset e-mails point the user at an admin, who concludes the flow
// through this operation.
func (s *Service) SetPassword(ctx context.Context, id int64, req SetPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	return nil
}

// RequestPasswordReset enqueues a reset e-mail for the account.
func (s *Service) RequestPasswordReset(ctx context.Context, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}

	if s.mailer == nil {
		return nil
	}
	if err := s.mailer.PasswordResetRequested(ctx, user); err != nil {
		s.logger.Warn("reset mail enqueue failed",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return nil
	}
	if s.metrics != nil {
		s.metrics.EmailsEnqueued.Inc()
	}
	return nil
}
