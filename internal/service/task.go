package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atinyakov/taskly/internal/models"
	"github.com/atinyakov/taskly/internal/repository"
	"github.com/google/uuid"
)

// TaskRepository defines the persistence operations needed by the TaskService.
// Every method is scoped to the owning user.
type TaskRepository interface {
	// CreateTask stores a fully populated task.
	CreateTask(ctx context.Context, task *models.Task) error
	// ListTasks returns the user's tasks, newest first.
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	// UpdateTask applies a partial update to one of the user's tasks.
	UpdateTask(ctx context.Context, userID, id string, upd models.TaskUpdate) (*models.Task, error)
	// DeleteTask removes one of the user's tasks.
	DeleteTask(ctx context.Context, userID, id string) error
}

// TaskService implements to-do list management for authenticated users.
type TaskService struct {
	// repo is the underlying persistence repository.
	repo TaskRepository
	now  func() time.Time
}

// NewTaskService constructs a TaskService with the provided TaskRepository.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// Create adds a new task for userID. The title must not be blank.
func (s *TaskService) Create(ctx context.Context, userID, title, description string) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidInput
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns all tasks owned by userID, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	return s.repo.ListTasks(ctx, userID)
}

// Update applies upd to the task id owned by userID. A present but blank
// title is rejected.
func (s *TaskService) Update(ctx context.Context, userID, id string, upd models.TaskUpdate) (*models.Task, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, ErrInvalidInput
	}

	task, err := s.repo.UpdateTask(ctx, userID, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// Delete removes the task id owned by userID.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	err := s.repo.DeleteTask(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
