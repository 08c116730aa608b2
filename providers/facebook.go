package providers

import (
	"context"
	"net/url"
)

const facebookTokenURL = "https://graph.facebook.com/v15.0/oauth/access_token"

// FacebookRefresher trades a still-valid long-lived access token for a
// fresh one. Facebook issues no refresh tokens; the access token itself
// is the exchange credential.
type FacebookRefresher struct {
	cfg Config
}

func NewFacebookRefresher(cfg Config) *FacebookRefresher {
	if cfg.TokenURL == "" {
		cfg.TokenURL = facebookTokenURL
	}
	return &FacebookRefresher{cfg: cfg}
}

func (f *FacebookRefresher) Refresh(ctx context.Context, exchangeToken string) (*RefreshedCredentials, error) {
	form := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {f.cfg.ClientID},
		"client_secret":     {f.cfg.ClientSecret},
		"fb_exchange_token": {exchangeToken},
	}
	return postTokenEndpoint(ctx, f.cfg.httpClient(), f.cfg.TokenURL, form)
}
