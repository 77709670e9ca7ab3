// Package service provides the authentication flow and task management logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/taskly/internal/auth"
	"github.com/atinyakov/taskly/internal/models"
	"github.com/atinyakov/taskly/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// UserExists returns true if a user with the given login exists.
	UserExists(ctx context.Context, login string) (bool, error)
	// FindUserByLogin returns the user with the given login or repository.ErrNotFound.
	FindUserByLogin(ctx context.Context, login string) (*models.User, error)
	// CreateUser stores a new user. It returns repository.ErrDuplicateLogin
	// when the login is already taken.
	CreateUser(ctx context.Context, user *models.User) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, hash []byte) bool
}

// TokenIssuer issues signed tokens for a user ID.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Service implements registration and login.
type Service struct {
	repo   AuthRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger

	// dummyHash is compared against when the login is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService constructs a new Service.
func NewAuthService(repo AuthRepository, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) (*Service, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Register creates an account for login and returns a token for it.
// It fails with ErrInvalidInput for empty or unusable credentials and with
// ErrAccountAlreadyExists when the login is taken, including when a concurrent
// registration wins the race at the store.
func (s *Service) Register(ctx context.Context, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", ErrInvalidInput
	}

	exists, err := s.repo.UserExists(ctx, login)
	if err != nil {
		return "", fmt.Errorf("check user: %w", err)
	}
	if exists {
		return "", ErrAccountAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return "", err
	}

	user := &models.User{ID: uuid.NewString(), Login: login, PasswordHash: hash}

	// Signing first means a failed insert only discards the token.
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateLogin) {
			s.log.Info("registration lost race", zap.String("login", login))
			return "", ErrAccountAlreadyExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return token, nil
}

// Login verifies the credentials and returns a token. Unknown logins and wrong
// passwords both yield ErrAuthenticationFailed.
func (s *Service) Login(ctx context.Context, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", ErrAuthenticationFailed
	}

	user, err := s.repo.FindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.log.Debug("login failed", zap.String("reason", "unknown login"))
			return "", ErrAuthenticationFailed
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Debug("login failed", zap.String("reason", "password mismatch"), zap.String("user_id", user.ID))
		return "", ErrAuthenticationFailed
	}

	return s.tokens.Issue(user.ID)
}
