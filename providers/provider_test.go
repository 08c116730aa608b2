package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	for _, p := range All() {
		parsed, err := Parse(string(p))
		assert.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := Parse("twitter")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestProviderTraits(t *testing.T) {
	assert.True(t, Google.GoogleFamily())
	assert.True(t, GoogleAds.GoogleFamily())
	assert.True(t, GoogleAnalytics.GoogleFamily())
	assert.False(t, Facebook.GoogleFamily())

	assert.True(t, Google.UsesRefreshGrant())
	assert.False(t, Facebook.UsesRefreshGrant())
}

func TestRegistry_ForProvider(t *testing.T) {
	registry := NewRegistry(
		Config{ClientID: "g", ClientSecret: "gs"},
		Config{ClientID: "f", ClientSecret: "fs"},
	)

	for _, p := range All() {
		refresher, err := registry.ForProvider(p)
		assert.NoError(t, err)
		assert.NotNil(t, refresher)
	}

	// Google-family providers share one refresher
	googleRefresher, _ := registry.ForProvider(Google)
	adsRefresher, _ := registry.ForProvider(GoogleAds)
	assert.Same(t, googleRefresher, adsRefresher)

	_, err := registry.ForProvider(Provider("twitter"))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
