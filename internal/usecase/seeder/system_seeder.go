package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// BootstrapUser defines the account seeded at startup. Trusted-origin callers
// act as this user.
type BootstrapUser struct {
	Username string
	Password string
}

// SystemSeeder handles seeding of the bootstrap user
type SystemSeeder struct {
	repo domain.UserRepository
	hash func(password string) (string, error)
	now  func() time.Time
	user BootstrapUser
}

// NewSystemSeeder creates a new SystemSeeder instance
func NewSystemSeeder(repo domain.UserRepository, hash func(string) (string, error), user BootstrapUser) *SystemSeeder {
	return &SystemSeeder{
		repo: repo,
		hash: hash,
		now:  func() time.Time { return time.Now().UTC() },
		user: user,
	}
}

// Seed ensures the bootstrap user exists and returns its id.
// An existing user is left untouched, including its password.
func (s *SystemSeeder) Seed(ctx context.Context) (uuid.UUID, error) {
	username := strings.TrimSpace(s.user.Username)
	if username == "" {
		return uuid.Nil, domain.Validationf("bootstrap username cannot be empty")
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up bootstrap user: %w", err)
	}

	if s.user.Password == "" {
		return uuid.Nil, domain.Validationf("bootstrap password is required to create %q", username)
	}
	hash, err := s.hash(s.user.Password)
	if err != nil {
		return uuid.Nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create bootstrap user: %w", err)
	}
	return user.ID, nil
}
