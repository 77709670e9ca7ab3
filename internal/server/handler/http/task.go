package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/taskly/internal/middleware"
	"github.com/atinyakov/taskly/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TaskService defines the task operations required by the TaskHandler.
// Every call is scoped to userID.
type TaskService interface {
	Create(ctx context.Context, userID, title, description string) (*models.Task, error)
	List(ctx context.Context, userID string) ([]models.Task, error)
	Update(ctx context.Context, userID, id string, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// TaskHandler handles HTTP requests for the authenticated user's tasks.
// It must be mounted behind middleware.TokenAuth.
type TaskHandler struct {
	TaskService TaskService
	Logger      *zap.Logger
}

// CreateTaskRequest is the JSON payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	tasks, err := h.TaskService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, loggerOrNop(h.Logger), err, "Error fetching tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
		return
	}

	task, err := h.TaskService.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, loggerOrNop(h.Logger), err, "Error creating task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{taskID}. Fields missing from the body keep
// their current value.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	taskID := chi.URLParam(r, "taskID")

	var upd models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
		return
	}

	task, err := h.TaskService.Update(r.Context(), userID, taskID, upd)
	if err != nil {
		writeServiceError(w, loggerOrNop(h.Logger), err, "Error updating task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{taskID}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	taskID := chi.URLParam(r, "taskID")

	if err := h.TaskService.Delete(r.Context(), userID, taskID); err != nil {
		writeServiceError(w, loggerOrNop(h.Logger), err, "Error deleting task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
