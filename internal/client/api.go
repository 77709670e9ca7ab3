// Package client implements the Taskly terminal client: a small HTTP API
// client, the on-disk session and the interactive shell.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/taskly/internal/models"
)

const (
	apiRegister = "/api/register"
	apiLogin    = "/api/login"
	apiTasks    = "/api/tasks"
)

// ErrNotLoggedIn is returned by task calls made without a token.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status   int
	Message  string `json:"message"`
	Category string `json:"category"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// API talks to the Taskly server.
type API struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token on task calls.
	Token string
}

// NewAPI returns an API client for baseURL. When caFile is set the client
// trusts only that CA, for servers using a self-signed certificate.
func NewAPI(baseURL, caFile string) (*API, error) {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
		}
	}
	return &API{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns its token.
func (a *API) Register(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	if err := a.do(ctx, http.MethodPost, apiRegister, false, credentials{email, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Login exchanges credentials for a token.
func (a *API) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	if err := a.do(ctx, http.MethodPost, apiLogin, false, credentials{email, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// ListTasks returns the caller's tasks, newest first.
func (a *API) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if err := a.do(ctx, http.MethodGet, apiTasks, true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask adds a task.
func (a *API) CreateTask(ctx context.Context, title, description string) (*models.Task, error) {
	body := map[string]string{"title": title, "description": description}
	var out models.Task
	if err := a.do(ctx, http.MethodPost, apiTasks, true, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask sends a partial update; nil fields are left unchanged.
func (a *API) UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	var out models.Task
	if err := a.do(ctx, http.MethodPut, apiTasks+"/"+id, true, upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task.
func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, apiTasks+"/"+id, true, nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	if authed && a.Token == "" {
		return ErrNotLoggedIn
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
