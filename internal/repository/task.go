package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/taskly/internal/models"
)

// PostgresTaskRepository implements task persistence against a PostgreSQL database.
// Every query is filtered by the owning user's ID.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresTaskRepository creates a new PostgresTaskRepository using the provided *sql.DB.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// CreateTask inserts task. ID, UserID and CreatedAt must already be set.
func (s *PostgresTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, task.ID, task.UserID, task.Title, task.Description, task.Completed, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateTask: %w", err)
	}
	return nil
}

// ListTasks returns all tasks of the given user, newest first.
//
//	ctx:    context for cancellation and deadlines
//	userID: identifier of the owner
func (s *PostgresTaskRepository) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, title, description, completed, created_at FROM tasks
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a single task by ID for the given user.
// Returns ErrNotFound when the task does not exist or belongs to someone else.
func (s *PostgresTaskRepository) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	var t models.Task
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, completed, created_at FROM tasks
		WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetTask: %w", err)
	}
	return &t, nil
}

// UpdateTask applies upd to the user's task inside a transaction and returns
// the stored result.
func (s *PostgresTaskRepository) UpdateTask(ctx context.Context, userID, id string, upd models.TaskUpdate) (*models.Task, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var t models.Task
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, completed, created_at FROM tasks
		WHERE user_id = $1 AND id = $2 FOR UPDATE
	`, userID, id).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}

	upd.Apply(&t)

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET title = $1, description = $2, completed = $3
		WHERE user_id = $4 AND id = $5
	`, t.Title, t.Description, t.Completed, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &t, nil
}

// DeleteTask removes the user's task. Returns ErrNotFound when nothing was deleted.
func (s *PostgresTaskRepository) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
