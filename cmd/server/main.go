// Package main initializes and starts the Taskly HTTP server,
// setting up configuration, logging, storage, services, handlers and
// optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/taskly/internal/auth"
	"github.com/atinyakov/taskly/internal/config"
	"github.com/atinyakov/taskly/internal/db"
	"github.com/atinyakov/taskly/internal/logger"
	"github.com/atinyakov/taskly/internal/repository"
	"github.com/atinyakov/taskly/internal/server/handler/http"
	"github.com/atinyakov/taskly/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pick the backing store: PostgreSQL when a DSN is configured, memory otherwise.
	var (
		authRepo service.AuthRepository
		taskRepo service.TaskRepository
		pinger   http.Pinger
		dbName   string
	)
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()

		pgAuth := repository.NewPostgresAuthRepository(postgresDB)
		authRepo, taskRepo, pinger, dbName = pgAuth, repository.NewPostgresTaskRepository(postgresDB), pgAuth, "postgres"
	} else {
		zapLogger.Warn("no database DSN configured, using in-memory store")
		mem := repository.NewMemoryStore()
		authRepo, taskRepo, pinger, dbName = mem, mem, mem, "memory"
	}

	// Initialize business-logic services.
	tokens := auth.NewTokenService([]byte(options.JWTSecret))
	authService, err := service.NewAuthService(authRepo, auth.NewBcryptHasher(options.BcryptCost), tokens, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init auth service", zap.Error(err))
	}
	taskService := service.NewTaskService(taskRepo)

	// Create HTTP handlers and build the router.
	authHandler := &http.AuthHandler{AuthService: authService, Logger: zapLogger}
	taskHandler := &http.TaskHandler{TaskService: taskService, Logger: zapLogger}
	healthHandler := &http.HealthHandler{Store: pinger, Database: dbName, Logger: zapLogger}
	router := http.NewRouter(authHandler, taskHandler, healthHandler, tokens, options.CORSOrigins, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCert != "" && options.TLSKey != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port), zap.String("store", dbName))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port), zap.String("store", dbName))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
