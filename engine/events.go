package engine

import (
	"time"

	"github.com/tokgrab-cli/tokgrab/media"
)

// Listener receives push-based lifecycle notifications from the engine.
// Any subscriber (CLI output, logger) may attach; the engine neither knows
// nor cares who is listening. Callbacks run synchronously on the resolution
// path and must be cheap.
type Listener interface {
	Started(reference string)
	Progressed(message string)
	Succeeded(result media.Media, elapsed time.Duration)
	Failed(reason error)
	DebugLogged(level, message string)
}

// BaseListener is a no-op Listener for embedding, so subscribers only
// implement the notifications they care about.
type BaseListener struct{}

func (BaseListener) Started(string)                       {}
func (BaseListener) Progressed(string)                    {}
func (BaseListener) Succeeded(media.Media, time.Duration) {}
func (BaseListener) Failed(error)                         {}
func (BaseListener) DebugLogged(string, string)           {}

// Subscribe attaches a listener for the engine's lifetime.
func (e *Engine) Subscribe(l Listener) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) each(notify func(Listener)) {
	e.listenersMu.Lock()
	attached := append([]Listener(nil), e.listeners...)
	e.listenersMu.Unlock()

	for _, l := range attached {
		notify(l)
	}
}

func (e *Engine) notifyStarted(reference string) {
	e.each(func(l Listener) { l.Started(reference) })
}

func (e *Engine) notifyProgressed(message string) {
	e.each(func(l Listener) { l.Progressed(message) })
}

func (e *Engine) notifySucceeded(result media.Media, elapsed time.Duration) {
	e.each(func(l Listener) { l.Succeeded(result, elapsed) })
}

func (e *Engine) notifyFailed(reason error) {
	e.each(func(l Listener) { l.Failed(reason) })
}

func (e *Engine) notifyDebug(level, message string) {
	e.each(func(l Listener) { l.DebugLogged(level, message) })
}
