package models

import "time"

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Picture     string    `json:"picture"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type Session struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	// Credentials holds the per-provider tokens obtained at the most
	// recent sign-in, keyed by provider identifier. Used as a recovery
	// source when a stored refresh token is rejected.
	Credentials map[string]ProviderCredentials `json:"-"`
	ExpiresAt   time.Time                      `json:"expires_at"`
	CreatedAt   time.Time                      `json:"created_at"`
	LastUsedAt  time.Time                      `json:"last_used_at"`
}

type LoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}
