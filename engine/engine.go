package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tokgrab-cli/tokgrab/cache"
	"github.com/tokgrab-cli/tokgrab/extractor"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/metrics"
	"github.com/tokgrab-cli/tokgrab/network"
	"github.com/tokgrab-cli/tokgrab/provider"
	"github.com/tokgrab-cli/tokgrab/util"
)

// Engine owns one resolution pipeline: the registered adapters, the result
// cache and the metrics registry. Cache and registry live exactly as long as
// the engine; nothing is shared across instances.
type Engine struct {
	config   Config
	adapters []provider.Adapter

	client   *http.Client
	cache    *cache.Cache
	registry *metrics.Registry

	listenersMu sync.Mutex
	listeners   []Listener
}

// New constructs an engine from the immutable config. With no explicit
// adapters the full builtin set is registered. The result cache's sweeper
// starts here and stops on Close.
func New(config Config, adapters ...provider.Adapter) (*Engine, error) {
	client, err := network.NewClient(config.Proxy, config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	if len(adapters) == 0 {
		standard := network.NewTransport(client, config.MaxRetries, config.ExtraHeaders)
		scrape := network.NewTransport(
			network.NewFingerprintClient(config.Timeout),
			config.MaxRetries,
			config.ExtraHeaders,
		)
		adapters = provider.Builtins(standard, scrape)
	}

	return &Engine{
		config:   config,
		adapters: adapters,
		client:   client,
		cache:    cache.New(config.MaxCacheAge, config.CacheResults),
		registry: metrics.NewRegistry(),
	}, nil
}

// Close stops the engine's background work. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	e.cache.Stop()
}

// Canonicalize validates a reference and maps every equivalent spelling of
// it, short links included, to the same canonical form. Resolve does this
// internally; callers that derive names or keys from the reference should
// canonicalize first and pass the result on.
func (e *Engine) Canonicalize(ctx context.Context, reference string) (string, error) {
	return extractor.Canonicalize(ctx, reference, e.client)
}

// Resolve turns a video reference into a concrete, playable media location.
// Only AllProvidersFailedError and extractor.ErrInvalidReference reach the
// caller; individual adapter failures are summarized in the former and
// inspectable via Snapshot.
func (e *Engine) Resolve(ctx context.Context, reference string) (*media.Media, error) {
	started := time.Now()
	e.notifyStarted(reference)

	canonical, err := extractor.Canonicalize(ctx, reference, e.client)
	if err != nil {
		e.registry.RecordResolution(false)
		e.notifyFailed(err)
		return nil, err
	}

	if hit := e.cache.Get(canonical); hit.IsPresent() {
		result := hit.MustGet()
		log.Infof("cache hit for %s via %s", canonical, result.Provider)
		e.registry.RecordCacheHit()
		e.registry.RecordResolution(true)
		e.notifySucceeded(result, time.Since(started))
		return &result, nil
	}

	e.notifyProgressed(fmt.Sprintf("asking %s", util.Quantify(len(e.adapters), "provider", "providers")))

	fanoutCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	candidates, reasons := e.resolveAll(fanoutCtx, canonical)
	if len(candidates) == 0 {
		failure := &AllProvidersFailedError{Reasons: reasons}
		log.Error(failure)
		e.registry.RecordResolution(false)
		e.notifyFailed(failure)
		return nil, failure
	}

	best := SelectBest(candidates, e.config.PreferredQuality)
	log.Infof("arbitrated %d candidates for %s, %s won", len(candidates), canonical, best.Provider)

	e.cache.Put(canonical, best)
	e.registry.RecordResolution(true)
	e.notifySucceeded(best, time.Since(started))

	return &best, nil
}

// Snapshot exposes the engine's accounting for pull-based observers.
func (e *Engine) Snapshot() metrics.Snapshot {
	return e.registry.Snapshot()
}

// ResetStats clears every counter atomically. Operator action only.
func (e *Engine) ResetStats() {
	e.registry.Reset()
}

// Client returns the engine's proxied HTTP client for collaborator use
// (byte downloads share the proxy configuration).
func (e *Engine) Client() *http.Client {
	return e.client
}
