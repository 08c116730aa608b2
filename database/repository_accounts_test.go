package database

import (
	"adboard/models"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "accounts-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)

	err = db.Migrate()
	require.NoError(t, err)

	repo := NewRepository(db)

	// Create test user
	testUser := &models.User{
		ID:        "test-user",
		Email:     "test@example.com",
		Name:      "Test User",
		CreatedAt: time.Now(),
	}
	err = repo.UpsertUser(testUser)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func TestAccountLifecycle(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("Unlinked provider returns nil", func(t *testing.T) {
		acct, err := repo.GetAccount("test-user", "google")
		require.NoError(t, err)
		assert.Nil(t, acct)
	})

	t.Run("Upsert creates the record", func(t *testing.T) {
		err := repo.UpsertAccount(&models.Account{
			ID:           "acct-1",
			UserID:       "test-user",
			Provider:     "google",
			AccessToken:  "A",
			RefreshToken: "R",
			ExpiresAt:    1700003600,
			Scope:        "openid",
			CreatedAt:    time.Now(),
		})
		require.NoError(t, err)

		acct, err := repo.GetAccount("test-user", "google")
		require.NoError(t, err)
		require.NotNil(t, acct)
		assert.Equal(t, "A", acct.AccessToken)
		assert.Equal(t, "R", acct.RefreshToken)
		assert.Equal(t, int64(1700003600), acct.ExpiresAt)
	})

	t.Run("Second upsert overwrites, not duplicates", func(t *testing.T) {
		err := repo.UpsertAccount(&models.Account{
			ID:           "acct-2",
			UserID:       "test-user",
			Provider:     "google",
			AccessToken:  "A2",
			RefreshToken: "R2",
			ExpiresAt:    1700007200,
			CreatedAt:    time.Now(),
		})
		require.NoError(t, err)

		acct, err := repo.GetAccount("test-user", "google")
		require.NoError(t, err)
		require.NotNil(t, acct)
		assert.Equal(t, "A2", acct.AccessToken)
		assert.Equal(t, "R2", acct.RefreshToken)
		// Original row survives, only credentials change
		assert.Equal(t, "acct-1", acct.ID)

		linked, err := repo.ListAccountProviders("test-user")
		require.NoError(t, err)
		assert.Equal(t, []string{"google"}, linked)
	})

	t.Run("UpdateAccountTokens persists refreshed credentials", func(t *testing.T) {
		err := repo.UpdateAccountTokens("test-user", "google", "B", "R2", 1700010800)
		require.NoError(t, err)

		acct, err := repo.GetAccount("test-user", "google")
		require.NoError(t, err)
		require.NotNil(t, acct)
		assert.Equal(t, "B", acct.AccessToken)
		assert.Equal(t, "R2", acct.RefreshToken)
		assert.Equal(t, int64(1700010800), acct.ExpiresAt)
	})

	t.Run("Records are scoped per provider", func(t *testing.T) {
		err := repo.UpsertAccount(&models.Account{
			ID:          "acct-3",
			UserID:      "test-user",
			Provider:    "facebook",
			AccessToken: "FB",
			ExpiresAt:   1700003600,
			CreatedAt:   time.Now(),
		})
		require.NoError(t, err)

		google, err := repo.GetAccount("test-user", "google")
		require.NoError(t, err)
		assert.Equal(t, "B", google.AccessToken)

		facebook, err := repo.GetAccount("test-user", "facebook")
		require.NoError(t, err)
		assert.Equal(t, "FB", facebook.AccessToken)
		assert.Empty(t, facebook.RefreshToken)

		linked, err := repo.ListAccountProviders("test-user")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"google", "facebook"}, linked)
	})

	t.Run("Records are scoped per user", func(t *testing.T) {
		acct, err := repo.GetAccount("other-user", "google")
		require.NoError(t, err)
		assert.Nil(t, acct)
	})
}

func TestUserUpsert(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	user, err := repo.GetUser("test-user")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "test@example.com", user.Email)

	err = repo.UpsertUser(&models.User{
		ID:          "test-user",
		Email:       "new@example.com",
		Name:        "Renamed",
		CreatedAt:   time.Now(),
		LastLoginAt: time.Now(),
	})
	require.NoError(t, err)

	user, err = repo.GetUser("test-user")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Renamed", user.Name)

	missing, err := repo.GetUser("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
