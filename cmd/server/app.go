package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/annotune/annotune-api/internal/config"
	"github.com/annotune/annotune-api/internal/platform/logger"
	"github.com/annotune/annotune-api/internal/platform/postgres"
	"github.com/annotune/annotune-api/internal/service"
	"github.com/annotune/annotune-api/internal/service/auth"
)

// application holds the fully wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	validate *validator.Validate

	userService     *service.UserService
	musicService    *service.MusicService
	questionService *service.QuestionService
	taskService     *service.TaskService
	tokenService    auth.TokenService
	userStore       *postgres.UserStore
}

// newApplication loads configuration, connects to the database, runs
// pending migrations and wires stores, services and handler dependencies.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		_ = db.Close()
		return nil, err
	}

	userStore := postgres.NewUserStore(db, appLogger)
	musicStore := postgres.NewMusicStore(db, appLogger)
	questionStore := postgres.NewQuestionStore(db, appLogger)
	taskStore := postgres.NewTaskStore(db, appLogger)

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	hasher := auth.NewBcryptHasher()
	runTx := service.NewTxRunner(db)

	return &application{
		config:   cfg,
		logger:   appLogger,
		db:       db,
		validate: validator.New(),

		userService:     service.NewUserService(userStore, tokenService, hasher, hasher, appLogger),
		musicService:    service.NewMusicService(runTx, musicStore, taskStore, appLogger),
		questionService: service.NewQuestionService(runTx, questionStore, taskStore, appLogger),
		taskService:     service.NewTaskService(runTx, taskStore, musicStore, userStore, questionStore, appLogger),
		tokenService:    tokenService,
		userStore:       userStore,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}
