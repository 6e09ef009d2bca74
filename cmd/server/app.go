package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/phrazzld/taskhub-api/internal/realtime"
	"github.com/phrazzld/taskhub-api/internal/service"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// application holds the process-wide dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore
	teamStore store.TeamStore

	jwtService auth.JWTService
	passwords  auth.PasswordService

	userService service.UserService
	taskService service.TaskService
	teamService service.TeamService

	relay *realtime.Relay
}

// newApplication builds the application on the Postgres stores.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		userStore: postgres.NewPostgresUserStore(db, logger),
		taskStore: postgres.NewPostgresTaskStore(db, logger),
		teamStore: postgres.NewPostgresTeamStore(db, logger),
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}
	return app, nil
}

// initServices builds everything above the stores. The stores must be set.
func (app *application) initServices() error {
	var err error

	app.jwtService, err = auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", app.config.Auth.TokenLifetimeMinutes))

	app.passwords = auth.NewBcryptVerifier(app.config.Auth.BCryptCost)

	app.userService, err = service.NewUserService(app.userStore, app.passwords, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	app.taskService, err = service.NewTaskService(app.taskStore, app.teamStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	app.teamService, err = service.NewTeamService(app.teamStore, app.userStore, app.db, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create team service: %w", err)
	}

	app.relay = realtime.NewRelay(app.logger)
	return nil
}
