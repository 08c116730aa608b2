package providers

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// Provider identifies one of the statically known external APIs a user
// can connect. The set is closed: anything outside it is a programming
// error on the caller's side, never a runtime data condition.
type Provider string

const (
	Google          Provider = "google"
	GoogleAds       Provider = "googleAds"
	GoogleAnalytics Provider = "googleAnalytics"
	Facebook        Provider = "facebook"
)

var ErrUnknownProvider = errors.New("unknown provider")

// All returns every known provider in a stable order.
func All() []Provider {
	return []Provider{Google, GoogleAds, GoogleAnalytics, Facebook}
}

// Parse converts an inbound identifier (route param, stored column)
// into a Provider, rejecting anything outside the known set.
func Parse(s string) (Provider, error) {
	switch Provider(s) {
	case Google, GoogleAds, GoogleAnalytics, Facebook:
		return Provider(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	_, err := Parse(string(p))
	return err == nil
}

// GoogleFamily reports whether p uses Google's OAuth infrastructure
// (shared client credentials and token endpoint).
func (p Provider) GoogleFamily() bool {
	return p == Google || p == GoogleAds || p == GoogleAnalytics
}

// UsesRefreshGrant reports whether p issues long-lived refresh tokens.
// Facebook has no refresh grant: a still-valid access token is traded
// for a new long-lived one instead.
func (p Provider) UsesRefreshGrant() bool {
	return p != Facebook
}

// Endpoint returns the oauth2 endpoint used for the authorization-code
// flow when connecting this provider.
func (p Provider) Endpoint() oauth2.Endpoint {
	if p == Facebook {
		return facebook.Endpoint
	}
	return google.Endpoint
}

// Scopes returns the OAuth scopes requested at sign-in for this
// provider.
func (p Provider) Scopes() []string {
	switch p {
	case GoogleAds:
		return []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"openid",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/adwords",
		}
	case GoogleAnalytics:
		return []string{
			"openid",
			"https://www.googleapis.com/auth/analytics.readonly",
		}
	case Facebook:
		return []string{"email", "ads_read"}
	default:
		return []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"openid",
			"https://www.googleapis.com/auth/userinfo.profile",
		}
	}
}
