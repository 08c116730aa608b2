package services

import "errors"

// Common service-level errors
var (
	// Auth errors
	ErrInvalidAuthCode = errors.New("invalid authorization code")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidUserInfo = errors.New("invalid user information")
	ErrUnverifiedEmail = errors.New("email address is not verified")
	ErrSessionNotFound = errors.New("session not found")

	// Token errors
	ErrAccountNotLinked = errors.New("account not linked for this provider")
	ErrTokenIncomplete  = errors.New("stored token record is incomplete")
	ErrRefreshFailed    = errors.New("token refresh failed")

	// Sign-in reconciliation: no credentials came out of a completed
	// OAuth exchange. This aborts the sign-in, it is not logged away.
	ErrNoCredentials = errors.New("no credentials issued for provider")
)
