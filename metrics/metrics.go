// Package metrics accounts for per-provider call outcomes and engine-level
// resolution results. One Registry is owned by one engine instance; every
// component reports into it as a side channel.
package metrics

import (
	"sync"
	"time"

	"github.com/samber/mo"
)

// errorLogSize caps the rolling log of recent failures.
const errorLogSize = 5

// ProviderStats is the per-provider counter set.
type ProviderStats struct {
	Calls                 uint64  `json:"calls"`
	Successes             uint64  `json:"successes"`
	Failures              uint64  `json:"failures"`
	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
}

// ErrorEvent is one recorded failure, attributed to a provider.
type ErrorEvent struct {
	Provider string    `json:"provider"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

// Snapshot is a consistent copy of the registry at one instant.
// SuccessRate and CacheHitRatio are absent until their denominators are
// non-zero; they marshal to JSON null in that state.
type Snapshot struct {
	Providers     map[string]ProviderStats `json:"providers"`
	Resolutions   uint64                   `json:"resolutions"`
	Successes     uint64                   `json:"successes"`
	CacheHits     uint64                   `json:"cache_hits"`
	SuccessRate   mo.Option[float64]       `json:"success_rate"`
	CacheHitRatio mo.Option[float64]       `json:"cache_hit_ratio"`
	RecentErrors  []ErrorEvent             `json:"recent_errors"`
}

// Registry is the process-wide accounting sink for one engine instance.
// All updates take the internal mutex; they are commutative counters plus a
// bounded log, so contention is short-lived.
type Registry struct {
	mu sync.Mutex

	providers map[string]*ProviderStats

	// Engine-level counters, tracked once per top-level Resolve call.
	resolutions uint64
	successes   uint64
	cacheHits   uint64

	recentErrors []ErrorEvent
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*ProviderStats),
	}
}

func (r *Registry) stats(provider string) *ProviderStats {
	s, ok := r.providers[provider]
	if !ok {
		s = &ProviderStats{}
		r.providers[provider] = s
	}
	return s
}

// RecordCall increments the call counter for a provider. Called once per
// fan-out unit regardless of outcome.
func (r *Registry) RecordCall(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats(provider).Calls++
}

// RecordSuccess increments the success counter and folds the sample into the
// provider's running mean response time.
func (r *Registry) RecordSuccess(provider string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats(provider)
	s.Successes++

	n := float64(s.Successes)
	sample := float64(elapsed.Milliseconds())
	s.AverageResponseTimeMs = (s.AverageResponseTimeMs*(n-1) + sample) / n
}

// RecordFailure increments the failure counter and appends to the rolling
// error log, discarding the oldest event beyond the cap.
func (r *Registry) RecordFailure(provider, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats(provider).Failures++

	r.recentErrors = append(r.recentErrors, ErrorEvent{
		Provider: provider,
		Reason:   reason,
		At:       time.Now(),
	})
	if len(r.recentErrors) > errorLogSize {
		r.recentErrors = r.recentErrors[len(r.recentErrors)-errorLogSize:]
	}
}

// RecordResolution accounts one top-level Resolve call.
func (r *Registry) RecordResolution(succeeded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resolutions++
	if succeeded {
		r.successes++
	}
}

// RecordCacheHit accounts one Resolve answered from the cache.
func (r *Registry) RecordCacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHits++
}

// Reset clears every counter and the error log in one atomic step.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = make(map[string]*ProviderStats)
	r.resolutions = 0
	r.successes = 0
	r.cacheHits = 0
	r.recentErrors = nil
}

// Snapshot returns a consistent copy with derived ratios.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Providers:     make(map[string]ProviderStats, len(r.providers)),
		Resolutions:   r.resolutions,
		Successes:     r.successes,
		CacheHits:     r.cacheHits,
		SuccessRate:   mo.None[float64](),
		CacheHitRatio: mo.None[float64](),
		RecentErrors:  append([]ErrorEvent(nil), r.recentErrors...),
	}

	for name, s := range r.providers {
		snap.Providers[name] = *s
	}

	if r.resolutions > 0 {
		snap.SuccessRate = mo.Some(float64(r.successes) / float64(r.resolutions))
		snap.CacheHitRatio = mo.Some(float64(r.cacheHits) / float64(r.resolutions))
	}

	return snap
}
