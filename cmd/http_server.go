package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/auth"
	authRepo "github.com/haddadrachelle2-png/testdoc/internal/auth/postgres"
	"github.com/haddadrachelle2-png/testdoc/internal/core/events"
	"github.com/haddadrachelle2-png/testdoc/internal/document"
	documentRepo "github.com/haddadrachelle2-png/testdoc/internal/document/postgres"
	"github.com/haddadrachelle2-png/testdoc/internal/settings"
	settingsRepo "github.com/haddadrachelle2-png/testdoc/internal/settings/postgres"
	"github.com/haddadrachelle2-png/testdoc/internal/transport/rest"
	"github.com/haddadrachelle2-png/testdoc/internal/user"
	userRepo "github.com/haddadrachelle2-png/testdoc/internal/user/postgres"
	"github.com/haddadrachelle2-png/testdoc/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	gormDB, err := initGorm(deps.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(deps.Logger)
	registerEventHandlers(eventBus, deps.Logger)

	tokenGen := auth.NewJWTTokenGenerator(deps.Config.Security.JWTSecret, deps.Config.Security.TokenTTL())
	authService := auth.NewService(authRepo.NewRepository(gormDB), tokenGen)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(userRepo.NewUserRepository(gormDB), deps.Config.Security.BCryptCost, deps.Logger)
	userHandler := user.NewHandler(userService, deps.Logger)

	settingsService := settings.NewService(settingsRepo.NewSettingsRepository(gormDB))
	documentService := document.NewService(documentRepo.NewDocumentRepository(gormDB), settingsService, eventBus, deps.Logger)
	documentHandler := document.NewHandler(documentService, deps.Config.Upload.MaxBytes(), deps.Logger)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, authHandler, userHandler, documentHandler, deps.Logger)
	return nil
}

func registerEventHandlers(bus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		log.Info("document lifecycle event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	}
	bus.Subscribe(events.EventTypeDocumentsSent, audit)
	bus.Subscribe(events.EventTypeDocumentsReceived, audit)
	bus.Subscribe(events.EventTypeDocumentsApproved, audit)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pgx connection so gorm and the health check
// share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
