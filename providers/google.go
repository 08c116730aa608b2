package providers

import (
	"context"
	"net/url"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// GoogleRefresher exchanges a refresh token for a new access token at
// Google's token endpoint. One instance serves all Google-family
// providers since they share client credentials and the endpoint.
type GoogleRefresher struct {
	cfg Config
}

func NewGoogleRefresher(cfg Config) *GoogleRefresher {
	if cfg.TokenURL == "" {
		cfg.TokenURL = googleTokenURL
	}
	return &GoogleRefresher{cfg: cfg}
}

func (g *GoogleRefresher) Refresh(ctx context.Context, exchangeToken string) (*RefreshedCredentials, error) {
	form := url.Values{
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {exchangeToken},
	}
	return postTokenEndpoint(ctx, g.cfg.httpClient(), g.cfg.TokenURL, form)
}
