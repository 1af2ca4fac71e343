// Package auth implements session login against stored accounts.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/pedidoflow/pedidoflow/internal/shared"
	"github.com/pedidoflow/pedidoflow/internal/users"
)

// Service authenticates accounts.
type Service struct {
	repo   users.Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo users.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Login verifies the credentials and returns the account. Unknown
// e-mails, wrong passwords and deactivated accounts all map to the
// same error so responses do not leak which one failed.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
