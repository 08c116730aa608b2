package services

import (
	"adboard/models"
	"adboard/providers"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

// MockAccountRepository is a mock implementation of AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

var _ AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) GetAccount(userID, provider string) (*models.Account, error) {
	args := m.Called(userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountTokens(userID, provider, accessToken, refreshToken string, expiresAt int64) error {
	args := m.Called(userID, provider, accessToken, refreshToken, expiresAt)
	return args.Error(0)
}

// stubRefresher records the exchange token it was handed and returns a
// canned result
type stubRefresher struct {
	creds         *providers.RefreshedCredentials
	err           error
	calls         int
	exchangeToken string
}

func (s *stubRefresher) Refresh(ctx context.Context, exchangeToken string) (*providers.RefreshedCredentials, error) {
	s.calls++
	s.exchangeToken = exchangeToken
	if s.err != nil {
		return nil, s.err
	}
	return s.creds, nil
}

type stubRegistry struct {
	refresher providers.Refresher
}

func (s *stubRegistry) ForProvider(p providers.Provider) (providers.Refresher, error) {
	if s.refresher == nil {
		return nil, providers.ErrUnknownProvider
	}
	return s.refresher, nil
}

type stubLastSignIn struct {
	creds map[string]models.ProviderCredentials
}

func (s *stubLastSignIn) LastCredentials(userID, provider string) (models.ProviderCredentials, bool) {
	creds, ok := s.creds[userID+":"+provider]
	return creds, ok
}

func newTestTokenService(repo AccountRepository, refresher providers.Refresher, lastSignIn LastSignInSource, now time.Time) *TokenService {
	ts := NewTokenService(repo, &stubRegistry{refresher: refresher}, lastSignIn)
	ts.now = func() time.Time { return now }
	return ts
}

// ==================== TESTS ====================

func TestTokenService_GetAccessToken_ValidToken(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:      "user123",
		Provider:    "google",
		AccessToken: "A",
		ExpiresAt:   now.Unix() + 600,
	}, nil).Twice()

	refresher := &stubRefresher{}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	// Two sequential calls: identical output, zero refreshes, zero writes
	for i := 0; i < 2; i++ {
		token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)
		assert.NoError(t, err)
		assert.Equal(t, "A", token)
	}

	assert.Equal(t, 0, refresher.calls)
	mockRepo.AssertNotCalled(t, "UpdateAccountTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_ExpiredTokenRefreshed(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)
	// New access token persisted, stored refresh token retained since
	// the provider did not rotate it
	mockRepo.On("UpdateAccountTokens", "user123", "google", "B", "R", now.Unix()+3600).Return(nil)

	refresher := &stubRefresher{creds: &providers.RefreshedCredentials{
		AccessToken: "B",
		ExpiresIn:   3600,
	}}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.NoError(t, err)
	assert.Equal(t, "B", token)
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, "R", refresher.exchangeToken)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_RotatedRefreshToken(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)
	mockRepo.On("UpdateAccountTokens", "user123", "google", "B", "R2", now.Unix()+3600).Return(nil)

	refresher := &stubRefresher{creds: &providers.RefreshedCredentials{
		AccessToken:  "B",
		ExpiresIn:    3600,
		RefreshToken: "R2",
	}}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.NoError(t, err)
	assert.Equal(t, "B", token)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_FacebookUsesAccessTokenForExchange(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "facebook").Return(&models.Account{
		UserID:      "user123",
		Provider:    "facebook",
		AccessToken: "FB_OLD",
		ExpiresAt:   now.Unix() - 1,
	}, nil)
	mockRepo.On("UpdateAccountTokens", "user123", "facebook", "FB_NEW", "", now.Unix()+5184000).Return(nil)

	refresher := &stubRefresher{creds: &providers.RefreshedCredentials{
		AccessToken: "FB_NEW",
		ExpiresIn:   5184000,
	}}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	token, err := service.GetAccessToken(context.Background(), "user123", providers.Facebook)

	assert.NoError(t, err)
	assert.Equal(t, "FB_NEW", token)
	assert.Equal(t, "FB_OLD", refresher.exchangeToken)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_NotLinked(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(nil, nil)

	service := newTestTokenService(mockRepo, &stubRefresher{}, nil, now)

	token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.ErrorIs(t, err, ErrAccountNotLinked)
	assert.Empty(t, token)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_IncompleteRecord(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name    string
		account *models.Account
	}{
		{
			name: "Missing access token",
			account: &models.Account{
				UserID:    "user123",
				Provider:  "google",
				ExpiresAt: now.Unix() + 600,
			},
		},
		{
			name: "Missing expiry",
			account: &models.Account{
				UserID:      "user123",
				Provider:    "google",
				AccessToken: "A",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			mockRepo.On("GetAccount", "user123", "google").Return(tt.account, nil)

			service := newTestTokenService(mockRepo, &stubRefresher{}, nil, now)

			_, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

			assert.ErrorIs(t, err, ErrTokenIncomplete)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTokenService_GetAccessToken_RefreshRejected(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)

	refreshErr := &providers.RefreshError{StatusCode: 400, Code: "server_error"}
	refresher := &stubRefresher{err: refreshErr}
	service := newTestTokenService(mockRepo, refresher, &stubLastSignIn{}, now)

	token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.ErrorIs(t, err, ErrRefreshFailed)
	var rerr *providers.RefreshError
	assert.ErrorAs(t, err, &rerr)
	assert.Equal(t, "server_error", rerr.Code)
	assert.Empty(t, token)
	mockRepo.AssertNotCalled(t, "UpdateAccountTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_TransportError(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)

	refresher := &stubRefresher{err: errors.New("connection refused")}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	_, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.ErrorIs(t, err, ErrRefreshFailed)
	mockRepo.AssertNotCalled(t, "UpdateAccountTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_InvalidGrantFallback(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)
	// The last sign-in credentials overwrite the record
	mockRepo.On("UpdateAccountTokens", "user123", "google", "C", "R2", now.Unix()+1800).Return(nil)

	refresher := &stubRefresher{err: &providers.RefreshError{StatusCode: 400, Code: "invalid_grant"}}
	lastSignIn := &stubLastSignIn{creds: map[string]models.ProviderCredentials{
		"user123:google": {
			AccessToken:  "C",
			RefreshToken: "R2",
			ExpiresAt:    now.Unix() + 1800,
		},
	}}
	service := newTestTokenService(mockRepo, refresher, lastSignIn, now)

	token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.NoError(t, err)
	assert.Equal(t, "C", token)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_InvalidGrantWithoutFallback(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)

	refresher := &stubRefresher{err: &providers.RefreshError{StatusCode: 400, Code: "invalid_grant"}}
	service := newTestTokenService(mockRepo, refresher, &stubLastSignIn{}, now)

	_, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.ErrorIs(t, err, ErrRefreshFailed)
	mockRepo.AssertNotCalled(t, "UpdateAccountTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_InvalidGrantFacebookNotRecovered(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "facebook").Return(&models.Account{
		UserID:      "user123",
		Provider:    "facebook",
		AccessToken: "FB",
		ExpiresAt:   now.Unix() - 10,
	}, nil)

	refresher := &stubRefresher{err: &providers.RefreshError{StatusCode: 400, Code: "invalid_grant"}}
	lastSignIn := &stubLastSignIn{creds: map[string]models.ProviderCredentials{
		"user123:facebook": {AccessToken: "C", ExpiresAt: now.Unix() + 1800},
	}}
	service := newTestTokenService(mockRepo, refresher, lastSignIn, now)

	// The fallback is documented for Google-family providers only
	_, err := service.GetAccessToken(context.Background(), "user123", providers.Facebook)

	assert.ErrorIs(t, err, ErrRefreshFailed)
	mockRepo.AssertNotCalled(t, "UpdateAccountTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_PersistFailureSurfaced(t *testing.T) {
	now := time.Unix(1700000000, 0)

	mockRepo := new(MockAccountRepository)
	mockRepo.On("GetAccount", "user123", "google").Return(&models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}, nil)
	mockRepo.On("UpdateAccountTokens", "user123", "google", "B", "R", now.Unix()+3600).
		Return(errors.New("database error"))

	refresher := &stubRefresher{creds: &providers.RefreshedCredentials{AccessToken: "B", ExpiresIn: 3600}}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	_, err := service.GetAccessToken(context.Background(), "user123", providers.Google)

	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestTokenService_GetAccessToken_ConcurrentCallsSingleRefresh(t *testing.T) {
	now := time.Unix(1700000000, 0)

	// First call sees an expired record and refreshes; the second,
	// serialized behind the per-pair lock, re-reads fresh state.
	mockRepo := new(MockAccountRepository)
	expired := &models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "A",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() - 10,
	}
	refreshed := &models.Account{
		UserID:       "user123",
		Provider:     "google",
		AccessToken:  "B",
		RefreshToken: "R",
		ExpiresAt:    now.Unix() + 3600,
	}
	mockRepo.On("GetAccount", "user123", "google").Return(expired, nil).Once()
	mockRepo.On("GetAccount", "user123", "google").Return(refreshed, nil).Once()
	mockRepo.On("UpdateAccountTokens", "user123", "google", "B", "R", now.Unix()+3600).Return(nil).Once()

	refresher := &stubRefresher{creds: &providers.RefreshedCredentials{AccessToken: "B", ExpiresIn: 3600}}
	service := newTestTokenService(mockRepo, refresher, nil, now)

	done := make(chan string, 2)
	for i := 0; i < 2; i++ {
		go func() {
			token, err := service.GetAccessToken(context.Background(), "user123", providers.Google)
			assert.NoError(t, err)
			done <- token
		}()
	}

	for i := 0; i < 2; i++ {
		assert.Equal(t, "B", <-done)
	}
	assert.Equal(t, 1, refresher.calls)
	mockRepo.AssertExpectations(t)
}
