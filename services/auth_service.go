package services

import (
	"adboard/config"
	"adboard/models"
	"adboard/providers"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// AuthService handles authentication business logic
type AuthService struct {
	repo         AuthRepository
	sessionStore SessionStore
}

// NewAuthService creates a new auth service
func NewAuthService(repo AuthRepository, sessionStore SessionStore) *AuthService {
	return &AuthService{
		repo:         repo,
		sessionStore: sessionStore,
	}
}

// UserInfo represents user information fetched from a provider
type UserInfo struct {
	ID            string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// LoginResponse contains the session and additional login metadata
type LoginResponse struct {
	Session *models.Session
	Token   *oauth2.Token
}

// OAuthConfigFor builds the authorization-code flow configuration for
// a provider from the process configuration.
func (as *AuthService) OAuthConfigFor(p providers.Provider) *oauth2.Config {
	clientID := config.AppConfig.GoogleClientID
	clientSecret := config.AppConfig.GoogleClientSecret
	if p == providers.Facebook {
		clientID = config.AppConfig.FacebookClientID
		clientSecret = config.AppConfig.FacebookClientSecret
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  config.AppConfig.OAuthRedirectBase + "/auth/" + string(p) + "/callback",
		Scopes:       p.Scopes(),
		Endpoint:     p.Endpoint(),
	}
}

// LoginWithCode completes an authorization-code sign-in for a provider:
// it exchanges the code, resolves the user's identity, reconciles the
// issued credentials into the account store, and opens a session.
func (as *AuthService) LoginWithCode(ctx context.Context, p providers.Provider, code string) (*LoginResponse, error) {
	oauthConfig := as.OAuthConfigFor(p)

	// Exchange authorization code for tokens
	// Force access_type=offline to ensure we get refresh tokens
	token, err := oauthConfig.Exchange(ctx, code, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, ErrInvalidAuthCode
	}

	userInfo, err := as.getUserInfo(p, token.AccessToken)
	if err != nil {
		return nil, err
	}

	// Google sign-ins with an unverified email are rejected outright.
	if p.GoogleFamily() && !userInfo.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	if err := as.createOrUpdateUser(userInfo); err != nil {
		return nil, err
	}

	// Reconcile the freshly issued credentials. A failure here aborts
	// the whole sign-in: a completed exchange with nothing to link is
	// an integration bug, not a transient condition.
	creds := credentialsFromToken(token)
	if err := as.SyncAccount(userInfo.ID, p, creds); err != nil {
		return nil, err
	}

	sess, err := as.sessionStore.Create(userInfo.ID, userInfo.Email, userInfo.Name, userInfo.Picture)
	if err != nil {
		return nil, err
	}
	as.sessionStore.SetCredentials(userInfo.ID, string(p), creds)

	return &LoginResponse{Session: sess, Token: token}, nil
}

// LoginWithIDToken handles login via a Google ID token (One Tap). No
// provider credentials are issued on this path, so no account record
// is touched.
func (as *AuthService) LoginWithIDToken(ctx context.Context, rawIDToken string) (*LoginResponse, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, config.AppConfig.GoogleClientID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	googleID := payload.Subject

	if googleID == "" || email == "" {
		return nil, ErrInvalidUserInfo
	}
	if !verified {
		return nil, ErrUnverifiedEmail
	}

	userInfo := &UserInfo{
		ID:            googleID,
		Email:         email,
		Name:          name,
		Picture:       picture,
		EmailVerified: verified,
	}

	if err := as.createOrUpdateUser(userInfo); err != nil {
		return nil, err
	}

	sess, err := as.sessionStore.Create(userInfo.ID, userInfo.Email, userInfo.Name, userInfo.Picture)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Session: sess}, nil
}

// ConnectProvider links an additional provider to an already
// authenticated user: it exchanges the code and reconciles the issued
// credentials without opening a new session.
func (as *AuthService) ConnectProvider(ctx context.Context, userID string, p providers.Provider, code string) error {
	token, err := as.OAuthConfigFor(p).Exchange(ctx, code, oauth2.AccessTypeOffline)
	if err != nil {
		return ErrInvalidAuthCode
	}

	creds := credentialsFromToken(token)
	if err := as.SyncAccount(userID, p, creds); err != nil {
		return err
	}
	as.sessionStore.SetCredentials(userID, string(p), creds)
	return nil
}

// SyncAccount upserts the (user, provider) token record with the
// credentials issued at sign-in. Last sign-in wins, with one explicit
// exception: when the new exchange produced no refresh token, the
// previously stored refresh token is carried forward rather than
// silently dropped.
func (as *AuthService) SyncAccount(userID string, p providers.Provider, creds models.ProviderCredentials) error {
	if creds.AccessToken == "" {
		return fmt.Errorf("%w: %s", ErrNoCredentials, p)
	}

	if creds.RefreshToken == "" {
		existing, err := as.repo.GetAccount(userID, string(p))
		if err != nil {
			return err
		}
		if existing != nil {
			creds.RefreshToken = existing.RefreshToken
		}
	}

	return as.repo.UpsertAccount(&models.Account{
		ID:           uuid.New().String(),
		UserID:       userID,
		Provider:     string(p),
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
		Scope:        creds.Scope,
		CreatedAt:    time.Now(),
	})
}

// Logout handles user logout
func (as *AuthService) Logout(sessionID string) error {
	return as.sessionStore.Delete(sessionID)
}

// GetSessionInfo returns current session information
func (as *AuthService) GetSessionInfo(sessionID string) (*models.Session, error) {
	sess, err := as.sessionStore.Get(sessionID)
	if err != nil || sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Connections lists the providers the user has linked.
func (as *AuthService) Connections(userID string) ([]string, error) {
	return as.repo.ListAccountProviders(userID)
}

// getUserInfo fetches the signed-in user's identity from the provider
func (as *AuthService) getUserInfo(p providers.Provider, accessToken string) (*UserInfo, error) {
	if p == providers.Facebook {
		return as.getFacebookUserInfo(accessToken)
	}
	return as.getGoogleUserInfo(accessToken)
}

func (as *AuthService) getGoogleUserInfo(accessToken string) (*UserInfo, error) {
	req, err := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v3/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, ErrInvalidToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, ErrInvalidToken
	}

	var data struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, ErrInvalidToken
	}

	if data.Sub == "" || data.Email == "" {
		return nil, ErrInvalidUserInfo
	}

	return &UserInfo{
		ID:            data.Sub,
		Email:         data.Email,
		Name:          data.Name,
		Picture:       data.Picture,
		EmailVerified: data.EmailVerified,
	}, nil
}

func (as *AuthService) getFacebookUserInfo(accessToken string) (*UserInfo, error) {
	query := url.Values{
		"fields":       {"id,name,email,picture"},
		"access_token": {accessToken},
	}
	resp, err := http.DefaultClient.Get("https://graph.facebook.com/v15.0/me?" + query.Encode())
	if err != nil {
		return nil, ErrInvalidToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, ErrInvalidToken
	}

	var data struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, ErrInvalidToken
	}

	if data.ID == "" {
		return nil, ErrInvalidUserInfo
	}

	return &UserInfo{
		ID:            "fb:" + data.ID,
		Email:         data.Email,
		Name:          data.Name,
		Picture:       data.Picture.Data.URL,
		EmailVerified: true,
	}, nil
}

// createOrUpdateUser saves or updates user in database
func (as *AuthService) createOrUpdateUser(userInfo *UserInfo) error {
	user := &models.User{
		ID:          userInfo.ID,
		Email:       userInfo.Email,
		Name:        userInfo.Name,
		Picture:     userInfo.Picture,
		CreatedAt:   time.Now(),
		LastLoginAt: time.Now(),
	}

	return as.repo.UpsertUser(user)
}

func credentialsFromToken(token *oauth2.Token) models.ProviderCredentials {
	var expiresAt int64
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry.Unix()
	}
	scope, _ := token.Extra("scope").(string)

	return models.ProviderCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		Scope:        scope,
	}
}
