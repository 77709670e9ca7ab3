// Package http provides the HTTP handlers and routing for the Taskly API.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns a bearer token for it.
	Register(ctx context.Context, login, password string) (string, error)
	// Login checks the credentials and returns a bearer token.
	Login(ctx context.Context, login, password string) (string, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Logger records unexpected failures.
	Logger *zap.Logger
}

// CredentialsRequest is the JSON payload for registration and login.
type CredentialsRequest struct {
	// Email is the account identifier.
	Email string `json:"email"`
	// Password is the plaintext password.
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/register.
// It expects a JSON body with "email" and "password" and answers 201 with a
// token on success.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
		return
	}

	token, err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, loggerOrNop(h.Logger), err, "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

// Login handles POST /api/login.
// Unknown emails and wrong passwords get the same 401 response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, loggerOrNop(h.Logger), err, "Error logging in")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
