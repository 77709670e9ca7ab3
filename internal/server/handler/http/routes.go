package http

import (
	"net/http"

	"github.com/atinyakov/taskly/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter constructs and returns an HTTP handler that serves
// the Taskly API.
//
// Parameters:
//
//	authHandler    - handler for registration and login endpoints
//	taskHandler    - handler for the task endpoints
//	healthHandler  - handler for the health endpoint
//	verifier       - token verifier used by the access gate
//	allowedOrigins - CORS origins allowed to call the API
//	logger         - structured logger for request logging middleware
//
// Routes:
//
//	GET    /health              → healthHandler.Health
//	POST   /api/register        → authHandler.Register
//	POST   /api/login           → authHandler.Login
//	GET    /api/tasks           → taskHandler.List   (protected)
//	POST   /api/tasks           → taskHandler.Create (protected)
//	PUT    /api/tasks/{taskID}  → taskHandler.Update (protected)
//	DELETE /api/tasks/{taskID}  → taskHandler.Delete (protected)
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. CORS
//  3. AllowContentType("application/json") — rejects non-JSON bodies
//  4. WithRequestLogging(logger)           — logs requests
//  5. TokenAuth on the protected group     — enforces bearer token auth
func NewRouter(
	authHandler *AuthHandler,
	taskHandler *TaskHandler,
	healthHandler *HealthHandler,
	verifier middleware.TokenVerifier,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Only allow request bodies with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/health", healthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(verifier, logger))

			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Put("/tasks/{taskID}", taskHandler.Update)
			r.Delete("/tasks/{taskID}", taskHandler.Delete)
		})
	})

	return r
}
