package providers

import "fmt"

// Registry maps each known provider to its refresh strategy. It is
// built once at startup; looking up a provider that was never
// registered is a programming error, not a data condition.
type Registry struct {
	refreshers map[Provider]Refresher
}

// NewRegistry wires the static provider set to concrete refreshers.
// The three Google-family providers share one refresher.
func NewRegistry(googleCfg, facebookCfg Config) *Registry {
	googleRefresher := NewGoogleRefresher(googleCfg)
	return &Registry{
		refreshers: map[Provider]Refresher{
			Google:          googleRefresher,
			GoogleAds:       googleRefresher,
			GoogleAnalytics: googleRefresher,
			Facebook:        NewFacebookRefresher(facebookCfg),
		},
	}
}

// ForProvider returns the refresh strategy registered for p.
func (r *Registry) ForProvider(p Provider) (Refresher, error) {
	refresher, ok := r.refreshers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, string(p))
	}
	return refresher, nil
}
