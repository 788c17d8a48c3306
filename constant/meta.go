// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Tokgrab is the canonical application identifier used for filesystem paths and CLI branding.
	Tokgrab = "tokgrab"

	// Version is the current application semantic version string.
	Version = "0.1.0"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Revision = "unknown"
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
)
