// Package user registers users and logs them in.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 50
)

// TokenIssuer issues bearer tokens for a user
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// PasswordHasher hashes and checks passwords
type PasswordHasher struct {
	Hash  func(password string) (string, error)
	Check func(hash, password string) bool
}

// UserService handles registration and login
type UserService struct {
	UserRepo domain.UserRepository
	Tokens   TokenIssuer
	Hasher   PasswordHasher
	Now      func() time.Time
}

// NewUserService creates a new UserService instance
func NewUserService(userRepo domain.UserRepository, tokens TokenIssuer, hasher PasswordHasher) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Tokens:   tokens,
		Hasher:   hasher,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user; a taken username returns ErrConflict
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.Validationf("username cannot be empty")
	}
	if len([]rune(username)) > maxUsernameLength {
		return nil, domain.Validationf("username must be at most %d characters", maxUsernameLength)
	}
	if len(password) < minPasswordLength {
		return nil, domain.Validationf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login checks credentials and returns a bearer token.
// Unknown usernames and wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.UserRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
		}
		return "", nil, err
	}
	if !s.Hasher.Check(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
