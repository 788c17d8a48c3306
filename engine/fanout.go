package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"
	"golang.org/x/sync/semaphore"

	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/provider"
)

// adapterResult is the settled outcome of one fan-out unit.
type adapterResult struct {
	name      string
	candidate mo.Option[media.Media]
	err       error
}

// resolveAll runs every adapter concurrently under the shared deadline and
// returns whichever produced a concrete candidate, plus the failure reasons
// of the rest. An empty candidate list is a valid, reportable outcome.
//
// All units settle before this returns: a fast answer never pre-empts a
// slower, possibly better one. A unit whose deadline elapses settles as a
// timeout; its in-flight network call is abandoned, not torn down.
func (e *Engine) resolveAll(ctx context.Context, reference string) ([]media.Media, map[string]string) {
	limit := int64(e.config.Concurrency)
	if limit <= 0 {
		limit = int64(len(e.adapters))
	}
	sem := semaphore.NewWeighted(limit)

	results := make(chan adapterResult, len(e.adapters))
	var wg sync.WaitGroup

	for _, adapter := range e.adapters {
		wg.Add(1)
		go func(a provider.Adapter) {
			defer wg.Done()
			results <- e.runUnit(ctx, sem, a, reference)
		}(adapter)
	}

	wg.Wait()
	close(results)

	var candidates []media.Media
	reasons := make(map[string]string)

	for result := range results {
		switch {
		case result.err != nil:
			reasons[result.name] = result.err.Error()
		case result.candidate.IsPresent():
			candidates = append(candidates, result.candidate.MustGet())
		default:
			reasons[result.name] = "no result"
		}
	}

	return candidates, reasons
}

// runUnit executes a single adapter, racing it against the shared deadline,
// and records the outcome under the adapter's name. The call counter always
// increments; the success counter and latency mean move only on a concrete
// candidate; absence, error and timeout all count as failures.
func (e *Engine) runUnit(ctx context.Context, sem *semaphore.Weighted, a provider.Adapter, reference string) adapterResult {
	name := a.Name()
	e.registry.RecordCall(name)

	if err := sem.Acquire(ctx, 1); err != nil {
		timeoutErr := fmt.Errorf("timed out waiting for a fan-out slot")
		e.registry.RecordFailure(name, timeoutErr.Error())
		return adapterResult{name: name, err: timeoutErr}
	}
	defer sem.Release(1)

	started := time.Now()

	settled := make(chan adapterResult, 1)
	go func() {
		candidate, err := a.Resolve(ctx, reference)
		settled <- adapterResult{name: name, candidate: candidate, err: err}
	}()

	var result adapterResult
	select {
	case result = <-settled:
	case <-ctx.Done():
		// Fire and abandon: the adapter goroutine keeps running until its own
		// context-aware network call notices, but this unit is settled.
		result = adapterResult{name: name, err: fmt.Errorf("timed out after %s", time.Since(started).Round(time.Millisecond))}
	}

	elapsed := time.Since(started)

	switch {
	case result.err != nil:
		e.notifyDebug("warn", fmt.Sprintf("%s failed: %v", name, result.err))
		e.registry.RecordFailure(name, result.err.Error())
	case result.candidate.IsPresent():
		e.notifyDebug("info", fmt.Sprintf("%s answered in %s", name, elapsed.Round(time.Millisecond)))
		e.registry.RecordSuccess(name, elapsed)
	default:
		e.notifyDebug("info", fmt.Sprintf("%s had no result", name))
		e.registry.RecordFailure(name, "no result")
	}

	return result
}
