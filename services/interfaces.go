package services

import (
	"adboard/models"
	"adboard/providers"
)

// AccountRepository defines the token record store consumed by the
// token accessor.
type AccountRepository interface {
	GetAccount(userID, provider string) (*models.Account, error)
	UpdateAccountTokens(userID, provider, accessToken, refreshToken string, expiresAt int64) error
}

// AuthRepository defines the data access needed at sign-in time.
type AuthRepository interface {
	UpsertUser(user *models.User) error
	GetAccount(userID, provider string) (*models.Account, error)
	UpsertAccount(acct *models.Account) error
	ListAccountProviders(userID string) ([]string, error)
}

// RefresherRegistry resolves the refresh strategy for a provider.
// Production uses providers.Registry.
type RefresherRegistry interface {
	ForProvider(p providers.Provider) (providers.Refresher, error)
}

// LastSignInSource exposes the credentials captured at a user's most
// recent sign-in, used as a fallback when a refresh token is revoked.
type LastSignInSource interface {
	LastCredentials(userID, provider string) (models.ProviderCredentials, bool)
}

// SessionStore defines the interface for session management
type SessionStore interface {
	Create(userID, email, name, picture string) (*models.Session, error)
	Get(sessionID string) (*models.Session, error)
	Delete(sessionID string) error
	SetCredentials(userID, provider string, creds models.ProviderCredentials)
	LastCredentials(userID, provider string) (models.ProviderCredentials, bool)
}
