// Package comps retrieves comparable-sale records from market-data
// providers and normalizes them into the model.Comparable shape the
// valuation engine consumes. Providers own the messy parts: auth, rate
// limits, response decoding, currency conversion, and date validation.
package comps

import (
	"context"
	"errors"
	"time"

	"github.com/retrovault/retrovault/internal/cache"
	"github.com/retrovault/retrovault/internal/model"
)

// ErrNoMatch is returned when a provider can't find a product resembling
// the query at all, as opposed to finding one with zero recorded sales.
var ErrNoMatch = errors.New("no matching product found")

// Query identifies the item to pull sold listings for.
type Query struct {
	Name             string
	Platform         string
	Region           string
	Condition        model.ConditionBucket
	GradingAuthority string
	GradeValue       float64
}

// Provider is one source of sold-listing data.
type Provider interface {
	// Available reports whether the provider is configured and usable.
	Available() bool

	// Search returns recent sales for the query, already normalized:
	// decimal prices, parsed dates, provider condition labels flattened
	// into free text. Records with unparsable dates are dropped, not
	// forwarded.
	Search(ctx context.Context, q Query) ([]model.Comparable, error)

	// Name identifies the provider in logs and source labels.
	Name() string
}

// Config holds provider configuration. Zero values disable the matching
// provider; the factory falls back to the mock.
type Config struct {
	GameValueAPIKey  string
	GameValueBaseURL string

	ScraperBaseURL string

	RequestTimeout time.Duration
	RatePerSec     float64
	CacheTTL       time.Duration
}

// withDefaults fills unset timing fields with workable defaults.
func (c Config) withDefaults() Config {
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.RatePerSec == 0 {
		c.RatePerSec = 2
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 6 * time.Hour
	}
	return c
}

// NewProvider picks the best-configured provider: the JSON API when a key
// is present, the scraper when only a base URL is, and the deterministic
// mock otherwise so development works offline.
func NewProvider(cfg Config, c *cache.Cache) Provider {
	cfg = cfg.withDefaults()

	if cfg.GameValueAPIKey != "" {
		return NewGameValueAPI(cfg, c)
	}
	if cfg.ScraperBaseURL != "" {
		return NewSoldListingsScraper(cfg, c)
	}
	return NewMockProvider()
}

// searchTerms renders the query as the free-text search string providers
// expect: name, platform, then a condition keyword.
func searchTerms(q Query) string {
	s := q.Name
	if q.Platform != "" {
		s += " " + q.Platform
	}
	switch q.Condition {
	case model.BucketSealed:
		s += " sealed"
	case model.BucketComplete:
		s += " cib"
	case model.BucketLoose:
		s += " loose"
	}
	return s
}
