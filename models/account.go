package models

import "time"

// Account is one linked provider connection for a user. The pair
// (UserID, Provider) is unique: a user has at most one live record
// per provider.
type Account struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    int64     `json:"expires_at"` // unix seconds, 0 = unknown
	Scope        string    `json:"scope,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the access token must be treated as unusable
// at the given instant. A token expiring exactly now is expired.
func (a *Account) Expired(now time.Time) bool {
	return a.ExpiresAt <= now.Unix()
}

// ProviderCredentials are the raw credentials issued by a provider
// during one OAuth exchange, before they are reconciled into an Account.
type ProviderCredentials struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	ExpiresAt    int64  `json:"expires_at"`
	Scope        string `json:"scope,omitempty"`
}
