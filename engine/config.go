// Package engine implements the multi-source resolution engine: concurrent
// fan-out to every registered provider, arbitration among the survivors, a
// time-bounded result cache and per-provider accounting.
package engine

import (
	"time"

	"github.com/tokgrab-cli/tokgrab/media"
)

// Config is the immutable snapshot of engine settings supplied at
// construction. Nothing mutates it afterwards.
type Config struct {
	// Timeout is the shared deadline for one whole resolution fan-out.
	Timeout time.Duration

	// MaxRetries bounds the attempts of every single provider request.
	MaxRetries int

	// PreferredQuality is a soft preference: when no candidate matches, the
	// best available wins instead of failing.
	PreferredQuality media.Quality

	// CacheResults toggles the result cache. Disabled, every Resolve fans
	// out to all providers with no other behavior change.
	CacheResults bool

	// MaxCacheAge bounds how long a memoized resolution is served.
	MaxCacheAge time.Duration

	// Concurrency caps how many providers are queried at once.
	// Zero or negative queries all of them simultaneously.
	Concurrency int

	// Proxy optionally routes all provider traffic (http, https or socks5).
	Proxy string

	// ExtraHeaders are merged into every provider request. They lose against
	// headers an adapter sets itself.
	ExtraHeaders map[string]string
}

// DefaultConfig returns the factory settings used when no configuration
// system is in play (tests, library consumers).
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		PreferredQuality: media.QualityHigh,
		CacheResults:     true,
		MaxCacheAge:      time.Hour,
	}
}
