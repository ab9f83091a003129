package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/platform/postgres"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	authService    service.AuthService
	taskService    service.TaskService

	// registry is the one broadcast registry shared by the task service and
	// the websocket handler.
	registry *events.Registry
}

// newPostgresApplication builds the application over the Postgres stores. It
// takes ownership of db.
func newPostgresApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app, err := newApplication(cfg, logger,
		postgres.NewPostgresUserStore(db, logger),
		postgres.NewPostgresTaskStore(db, logger))
	if err != nil {
		return nil, err
	}
	app.db = db
	return app, nil
}

// newApplication wires services over the given stores and seeds the admin
// account when configured to.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	userStore store.UserStore,
	taskStore store.TaskStore,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		userStore: userStore,
		taskStore: taskStore,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime", auth.TokenLifetime.String())

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.registry = events.NewRegistry(logger)

	app.authService = service.NewAuthService(app.userStore, app.jwtService, app.passwordHasher, logger)
	app.taskService = service.NewTaskService(app.taskStore, app.registry, logger)

	if cfg.Auth.SeedAdmin {
		if err := app.authService.SeedAdmin(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is canceled or the process is signaled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
