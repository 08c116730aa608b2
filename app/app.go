package app

import (
	"adboard/database"
	"adboard/services"
	"adboard/session"
	"adboard/validator"
	"log/slog"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Repo         *database.Repository
	SessionStore *session.Store
	AuthService  *services.AuthService
	TokenService *services.TokenService
	Validator    *validator.Validator
	Logger       *slog.Logger
}

// New creates a new App instance with all dependencies
func New(repo *database.Repository, sessionStore *session.Store, authService *services.AuthService, tokenService *services.TokenService, logger *slog.Logger) *App {
	return &App{
		Repo:         repo,
		SessionStore: sessionStore,
		AuthService:  authService,
		TokenService: tokenService,
		Validator:    validator.New(),
		Logger:       logger,
	}
}
