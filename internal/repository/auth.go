// Package repository provides persistence implementations for accounts and tasks.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/taskly/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateLogin is returned when the unique login constraint rejects an insert.
	ErrDuplicateLogin = errors.New("login already exists")
)

// PostgresAuthRepository implements account persistence using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists checks whether a user with the specified login exists in the database.
// The login is matched verbatim.
func (s *PostgresAuthRepository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`,
		login,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// FindUserByLogin returns the user with the given login, or ErrNotFound.
func (s *PostgresAuthRepository) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT id, login, password_hash FROM users WHERE login = $1`,
		login,
	).Scan(&u.ID, &u.Login, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("FindUserByLogin: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user. The unique constraint on login decides
// concurrent registrations: when a row with the same login already exists the
// ON CONFLICT clause suppresses the insert and ErrDuplicateLogin is returned.
func (s *PostgresAuthRepository) CreateUser(ctx context.Context, user *models.User) error {
	var id string
	err := s.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (id, login, password_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (login) DO NOTHING
		 RETURNING id`,
		user.ID, user.Login, user.PasswordHash,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *PostgresAuthRepository) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
