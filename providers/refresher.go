package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RefreshedCredentials is a provider's successful answer to a refresh
// or exchange request. ExpiresIn is relative seconds; the caller turns
// it into an absolute expiry.
type RefreshedCredentials struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshError is a structured rejection from a provider's token
// endpoint (non-2xx status with a decodable error body).
type RefreshError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *RefreshError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token endpoint returned %d: %s (%s)", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("token endpoint returned %d: %s", e.StatusCode, e.Code)
}

// Refresher turns an exchange token (a refresh token, or for providers
// without a refresh grant a still-valid access token) into fresh
// credentials via the provider's token endpoint.
type Refresher interface {
	Refresh(ctx context.Context, exchangeToken string) (*RefreshedCredentials, error)
}

// Config carries the client credentials injected into each refresher
// at construction. TokenURL and HTTPClient are optional overrides,
// used by tests.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// tokenResponse covers both the success and the error shape of a token
// endpoint response, decoded once. The error field is kept raw because
// Facebook nests an object where Google returns a plain string.
type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	ExpiresIn    int64           `json:"expires_in"`
	RefreshToken string          `json:"refresh_token"`
	ErrorField   json.RawMessage `json:"error"`
	ErrorDesc    string          `json:"error_description"`
}

func (tr *tokenResponse) errorCode() (code, description string) {
	if len(tr.ErrorField) == 0 {
		return "", tr.ErrorDesc
	}
	var s string
	if err := json.Unmarshal(tr.ErrorField, &s); err == nil {
		return s, tr.ErrorDesc
	}
	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(tr.ErrorField, &obj); err == nil {
		return obj.Type, obj.Message
	}
	return string(tr.ErrorField), tr.ErrorDesc
}

// postTokenEndpoint performs the single form-encoded POST shared by all
// refreshers and decodes the JSON body regardless of HTTP status, since
// providers return structured error bodies on non-2xx responses.
func postTokenEndpoint(ctx context.Context, client *http.Client, tokenURL string, form url.Values) (*RefreshedCredentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code, description := tr.errorCode()
		return nil, &RefreshError{
			StatusCode:  resp.StatusCode,
			Code:        code,
			Description: description,
		}
	}

	if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
		return nil, fmt.Errorf("malformed token response: missing access_token or expires_in")
	}

	return &RefreshedCredentials{
		AccessToken:  tr.AccessToken,
		ExpiresIn:    tr.ExpiresIn,
		RefreshToken: tr.RefreshToken,
	}, nil
}
