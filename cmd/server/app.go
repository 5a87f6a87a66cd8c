package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/salesim/salesim-api/internal/api"
	apimiddleware "github.com/salesim/salesim-api/internal/api/middleware"
	"github.com/salesim/salesim-api/internal/config"
	engine "github.com/salesim/salesim-api/internal/domain/simulation"
	"github.com/salesim/salesim-api/internal/platform/gemini"
	"github.com/salesim/salesim-api/internal/platform/postgres"
	"github.com/salesim/salesim-api/internal/service/auth"
	"github.com/salesim/salesim-api/internal/service/simulation"
	"github.com/salesim/salesim-api/internal/task"
)

// application holds the wired dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger

	userStore      *postgres.PostgresUserStore
	objectionStore *postgres.PostgresObjectionStore
	sessionStore   *postgres.PostgresSessionStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	simulator        simulation.SimulatorService

	taskRunner *task.Runner
}

// newApplication wires stores, services and the engine from configuration.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	logger *slog.Logger,
) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db)
	objectionStore := postgres.NewPostgresObjectionStore(db, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	generator, err := gemini.NewGeminiClient(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	simulator := simulation.NewSimulatorService(
		sessionStore,
		objectionStore,
		engine.NewDefaultService(),
		generator,
		logger,
	)

	return &application{
		config:           cfg,
		logger:           logger,
		userStore:        userStore,
		objectionStore:   objectionStore,
		sessionStore:     sessionStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		simulator:        simulator,
		taskRunner:       task.NewRunner(task.DefaultRunnerConfig(), logger),
	}, nil
}

// startBackgroundTasks launches the task runner and submits the startup
// work: catalog seeding runs in the background so an empty catalog never
// delays server start.
func (app *application) startBackgroundTasks() {
	app.taskRunner.Start()

	seedTask, err := task.NewCatalogSeedTask(app.objectionStore)
	if err != nil {
		app.logger.Error("failed to create catalog seed task", "error", err)
		return
	}
	if err := app.taskRunner.Submit(seedTask); err != nil {
		app.logger.Error("failed to submit catalog seed task", "error", err)
	}
}

// stopBackgroundTasks drains the task runner.
func (app *application) stopBackgroundTasks() {
	app.taskRunner.Stop()
}

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	sessionHandler := api.NewSessionHandler(app.simulator)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/sessions", sessionHandler.StartSession)
			r.Post("/sessions/{id}/turns", sessionHandler.SubmitTurn)
			r.Get("/sessions/{id}", sessionHandler.GetSession)
			r.Post("/sessions/{id}/end", sessionHandler.EndSession)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
