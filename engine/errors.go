package engine

import (
	"fmt"
	"sort"
	"strings"
)

// AllProvidersFailedError is the terminal resolution failure: every adapter
// ended in absence, error or timeout. It carries the per-provider reasons
// for diagnostics; individual failures are summarized here, not replayed.
type AllProvidersFailedError struct {
	Reasons map[string]string
}

func (e *AllProvidersFailedError) Error() string {
	names := make([]string, 0, len(e.Reasons))
	for name := range e.Reasons {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Reasons[name]))
	}

	return fmt.Sprintf("all %d providers failed (%s)", len(e.Reasons), strings.Join(parts, "; "))
}
