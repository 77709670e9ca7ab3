package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/taskly/internal/auth"
	"github.com/atinyakov/taskly/internal/models"
	"github.com/atinyakov/taskly/internal/repository"
	handler "github.com/atinyakov/taskly/internal/server/handler/http"
	"github.com/atinyakov/taskly/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop()
	store := repository.NewMemoryStore()
	tokens := auth.NewTokenService([]byte("router-test-secret"))

	authService, err := service.NewAuthService(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, log)
	require.NoError(t, err)

	router := handler.NewRouter(
		&handler.AuthHandler{AuthService: authService, Logger: log},
		&handler.TaskHandler{TaskService: service.NewTaskService(store), Logger: log},
		&handler.HealthHandler{Store: store, Database: "memory", Logger: log},
		tokens,
		[]string{"http://localhost:5173"},
		log,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	var tok handler.TokenResponse
	code := doJSON(t, srv, http.MethodPost, "/api/register", "", handler.CredentialsRequest{Email: email, Password: "pw123456"}, &tok)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, tok.Token)
	return tok.Token
}

func TestRouter_AuthFlow(t *testing.T) {
	srv := newTestServer(t)

	register(t, srv, "a@x.com")

	var errResp handler.ErrorResponse
	code := doJSON(t, srv, http.MethodPost, "/api/register", "", handler.CredentialsRequest{Email: "a@x.com", Password: "other"}, &errResp)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "account_exists", errResp.Category)

	var tok handler.TokenResponse
	code = doJSON(t, srv, http.MethodPost, "/api/login", "", handler.CredentialsRequest{Email: "a@x.com", Password: "pw123456"}, &tok)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, tok.Token)

	var wrong, unknown handler.ErrorResponse
	codeWrong := doJSON(t, srv, http.MethodPost, "/api/login", "", handler.CredentialsRequest{Email: "a@x.com", Password: "wrong"}, &wrong)
	codeUnknown := doJSON(t, srv, http.MethodPost, "/api/login", "", handler.CredentialsRequest{Email: "nobody@x.com", Password: "wrong"}, &unknown)
	assert.Equal(t, http.StatusUnauthorized, codeWrong)
	assert.Equal(t, codeWrong, codeUnknown)
	assert.Equal(t, wrong, unknown)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	var errResp handler.ErrorResponse
	code := doJSON(t, srv, http.MethodGet, "/api/tasks", "", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", errResp.Category)

	code = doJSON(t, srv, http.MethodGet, "/api/tasks", "garbage", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, code)

	code = doJSON(t, srv, http.MethodPost, "/api/tasks", "", map[string]string{"title": "x"}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_TasksIsolatedBetweenUsers(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice@x.com")
	bob := register(t, srv, "bob@x.com")

	var aliceTask, bobTask models.Task
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/tasks", alice, map[string]string{"title": "alice 1"}, &aliceTask))
	require.Equal(t, http.StatusCreated, doJSON(t, srv, http.MethodPost, "/api/tasks", bob, map[string]string{"title": "bob 1", "description": "secret"}, &bobTask))

	var aliceList []models.Task
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/tasks", alice, nil, &aliceList))
	require.Len(t, aliceList, 1)
	assert.Equal(t, aliceTask.ID, aliceList[0].ID)

	var errResp handler.ErrorResponse
	assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodPut, "/api/tasks/"+bobTask.ID, alice, map[string]any{"completed": true}, &errResp))
	assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodDelete, "/api/tasks/"+bobTask.ID, alice, nil, &errResp))

	var bobList []models.Task
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/tasks", bob, nil, &bobList))
	require.Len(t, bobList, 1)
	assert.False(t, bobList[0].Completed)
	assert.Equal(t, "secret", bobList[0].Description)

	var updated models.Task
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPut, "/api/tasks/"+aliceTask.ID, alice, map[string]any{"completed": true}, &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "alice 1", updated.Title)

	var msg map[string]string
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodDelete, "/api/tasks/"+aliceTask.ID, alice, nil, &msg))
	assert.Equal(t, "Task deleted successfully", msg["message"])
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/api/register", "text/plain", bytes.NewBufferString("email=a"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "memory", body["database"])
}

func TestHealthHandler_StoreDown(t *testing.T) {
	h := &handler.HealthHandler{Store: downStore{}, Database: "postgres"}

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "UNAVAILABLE")
}
