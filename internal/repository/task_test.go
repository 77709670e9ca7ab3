package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/taskly/internal/models"
)

var taskColumns = []string{"id", "user_id", "title", "description", "completed", "created_at"}

func setupTaskMock(t *testing.T) (*PostgresTaskRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresTaskRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestCreateTask_Success(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	task := &models.Task{
		ID:        "t1",
		UserID:    "u1",
		Title:     "buy milk",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks (id, user_id, title, description, completed, created_at)`)).
		WithArgs(task.ID, task.UserID, task.Title, task.Description, task.Completed, task.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateTask_Error(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks`)).
		WillReturnError(errors.New("fk violation"))

	err := repo.CreateTask(context.Background(), &models.Task{ID: "t1", UserID: "u1", Title: "x"})
	if err == nil || !regexp.MustCompile(`CreateTask`).MatchString(err.Error()) {
		t.Errorf("expected CreateTask error, got %v", err)
	}
}

func TestListTasks_Success(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	userID := "userA"
	newer := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(taskColumns).
		AddRow("2", userID, "second", "", true, newer).
		AddRow("1", userID, "first", "desc", false, older)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 ORDER BY created_at DESC`)).
		WithArgs(userID).
		WillReturnRows(rows)

	tasks, err := repo.ListTasks(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "2" || !tasks[0].Completed || tasks[1].Description != "desc" {
		t.Errorf("unexpected tasks returned: %+v", tasks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListTasks_Empty(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks`)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	tasks, err := repo.ListTasks(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestListTasks_QueryError(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks`)).
		WithArgs("u").
		WillReturnError(errors.New("query fail"))

	_, err := repo.ListTasks(context.Background(), "u")
	if err == nil || !regexp.MustCompile(`ListTasks`).MatchString(err.Error()) {
		t.Errorf("expected ListTasks error, got %v", err)
	}
}

func TestGetTask_Success(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND id = $2`)).
		WithArgs("u9", "xyz").
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("xyz", "u9", "tt", "dd", false, created))

	task, err := repo.GetTask(context.Background(), "u9", "xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "xyz" || task.Title != "tt" || !task.CreatedAt.Equal(created) {
		t.Errorf("got wrong task: %+v", task)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND id = $2`)).
		WithArgs("intruder", "xyz").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := repo.GetTask(context.Background(), "intruder", "xyz")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask error = %v; want %v", err, ErrNotFound)
	}
}

func TestUpdateTask_Success(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	done := true
	title := "new title"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("u1", "t1").
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("t1", "u1", "old title", "keep me", false, created))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET title = $1, description = $2, completed = $3`)).
		WithArgs(title, "keep me", true, "u1", "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	task, err := repo.UpdateTask(context.Background(), "u1", "t1", models.TaskUpdate{Title: &title, Completed: &done})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != title || task.Description != "keep me" || !task.Completed {
		t.Errorf("got wrong task: %+v", task)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("u2", "t1").
		WillReturnRows(sqlmock.NewRows(taskColumns))
	mock.ExpectRollback()

	_, err := repo.UpdateTask(context.Background(), "u2", "t1", models.TaskUpdate{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateTask error = %v; want %v", err, ErrNotFound)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateTask_ExecError(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("u1", "t1").
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("t1", "u1", "title", "", false, created))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks`)).
		WillReturnError(errors.New("write failed"))
	mock.ExpectRollback()

	_, err := repo.UpdateTask(context.Background(), "u1", "t1", models.TaskUpdate{})
	if err == nil || !regexp.MustCompile(`update task`).MatchString(err.Error()) {
		t.Fatalf("expected update task error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpdateTask_BeginError(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	_, err := repo.UpdateTask(context.Background(), "u1", "t1", models.TaskUpdate{})
	if err == nil || !regexp.MustCompile(`begin tx`).MatchString(err.Error()) {
		t.Fatalf("expected begin tx error, got %v", err)
	}
}

func TestDeleteTask_Success(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE user_id = $1 AND id = $2`)).
		WithArgs("userZ", "a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteTask(context.Background(), "userZ", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks`)).
		WithArgs("other", "a").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteTask(context.Background(), "other", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteTask error = %v; want %v", err, ErrNotFound)
	}
}
