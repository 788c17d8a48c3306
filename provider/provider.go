// Package provider contains the adapters that resolve a video reference
// against one external download service each. Adapters are intentionally
// dumb and order-independent: each builds its provider-specific request,
// runs it through the retrying transport, and parses its provider-specific
// response shape. No adapter may depend on another's outcome.
package provider

import (
	"context"

	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
)

// Adapter is the contract every provider integration satisfies.
//
// An absent result means the provider answered but had nothing usable; an
// error is reserved for transport or parse failures. Both are non-fatal to
// the fan-out.
type Adapter interface {
	// Name returns the unique identifier for the provider, used for
	// metrics attribution and arbitration tie-breaks.
	Name() string

	// Resolve attempts to turn the reference into a playable media location.
	Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error)
}

// PreferenceOrder is the hand-maintained tie-break sequence reflecting
// observed provider reliability. Providers not present here rank after all
// listed ones.
var PreferenceOrder = []string{
	"snaptik",
	"tikmate",
	"musicaldown",
	"tikwm",
	"webscraping",
}

// Rank returns the preference index for a provider name. Unlisted providers
// all share the sentinel rank len(PreferenceOrder), sorting last.
func Rank(name string) int {
	for i, preferred := range PreferenceOrder {
		if preferred == name {
			return i
		}
	}
	return len(PreferenceOrder)
}

// Builtins returns the full registered adapter set. The scrape transport
// carries the TLS-fingerprint client for the markup-scraping fallback; every
// other adapter talks through the standard transport.
func Builtins(standard, scrape *network.Transport) []Adapter {
	return []Adapter{
		&Snaptik{transport: standard},
		&Tikmate{transport: standard},
		&Musicaldown{transport: standard},
		&Tikwm{transport: standard},
		&TiktokAPI{transport: standard},
		&Dlpanda{transport: standard},
		&Ssstik{transport: standard},
		&Webscraping{transport: scrape},
	}
}

// Names lists the adapter names in registration order.
func Names(adapters []Adapter) []string {
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	return names
}
