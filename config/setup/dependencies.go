package setup

import (
	"adboard/app"
	"adboard/config"
	"adboard/database"
	"adboard/providers"
	"adboard/services"
	"adboard/session"
	"log/slog"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// InitApp initializes the application with all dependencies
func InitApp(db *database.DB, logger *slog.Logger) *app.App {
	// Create repository
	repo := database.NewRepository(db)

	// Initialize in-memory session store
	sessionStore := session.NewStore()
	sessionStore.StartCleanupRoutine()
	logger.Info("session store initialized")

	// One refresher per provider family, client credentials injected
	// here and nowhere else.
	registry := providers.NewRegistry(
		providers.Config{
			ClientID:     config.AppConfig.GoogleClientID,
			ClientSecret: config.AppConfig.GoogleClientSecret,
		},
		providers.Config{
			ClientID:     config.AppConfig.FacebookClientID,
			ClientSecret: config.AppConfig.FacebookClientSecret,
		},
	)

	authService := services.NewAuthService(repo, sessionStore)
	tokenService := services.NewTokenService(repo, registry, sessionStore)
	logger.Info("token service initialized", "providers", len(providers.All()))

	// Create App with all dependencies injected
	application := app.New(repo, sessionStore, authService, tokenService, logger)
	logger.Info("application initialized with dependency injection")

	return application
}

// Shutdown performs graceful shutdown of all services
func Shutdown(db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	// Close database
	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
