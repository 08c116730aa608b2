package database

import (
	"adboard/models"
	"database/sql"
	"time"
)

// ==================== ACCOUNTS ====================

// GetAccount returns the linked account for (userID, provider), or
// nil when the user never connected that provider.
func (r *Repository) GetAccount(userID, provider string) (*models.Account, error) {
	var acct models.Account

	err := r.db.QueryRow(`
		SELECT id, user_id, provider, access_token, refresh_token,
			   expires_at, scope, created_at, updated_at
		FROM accounts WHERE user_id = ? AND provider = ?
	`, userID, provider).Scan(
		&acct.ID, &acct.UserID, &acct.Provider, &acct.AccessToken,
		&acct.RefreshToken, &acct.ExpiresAt, &acct.Scope,
		&acct.CreatedAt, &acct.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &acct, nil
}

// UpsertAccount creates or overwrites the account row for the
// (user_id, provider) pair in a single atomic statement.
func (r *Repository) UpsertAccount(acct *models.Account) error {
	_, err := r.db.Exec(`
		INSERT INTO accounts (id, user_id, provider, access_token, refresh_token,
			expires_at, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scope = excluded.scope,
			updated_at = excluded.updated_at
	`,
		acct.ID, acct.UserID, acct.Provider, acct.AccessToken, acct.RefreshToken,
		acct.ExpiresAt, acct.Scope, acct.CreatedAt, time.Now(),
	)
	return err
}

// UpdateAccountTokens persists refreshed credentials for an existing
// account in one atomic write.
func (r *Repository) UpdateAccountTokens(userID, provider, accessToken, refreshToken string, expiresAt int64) error {
	_, err := r.db.Exec(`
		UPDATE accounts SET
			access_token = ?,
			refresh_token = ?,
			expires_at = ?,
			updated_at = ?
		WHERE user_id = ? AND provider = ?
	`,
		accessToken, refreshToken, expiresAt, time.Now(), userID, provider,
	)
	return err
}

// ListAccountProviders returns the provider identifiers the user has
// connected, oldest first.
func (r *Repository) ListAccountProviders(userID string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT provider FROM accounts
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice to avoid returning nil
	providerIDs := make([]string, 0)
	for rows.Next() {
		var provider string
		if err := rows.Scan(&provider); err != nil {
			return nil, err
		}
		providerIDs = append(providerIDs, provider)
	}

	return providerIDs, rows.Err()
}
