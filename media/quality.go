// Package media defines the domain models shared between providers, the
// resolution engine and the download pipeline.
package media

import "fmt"

// Quality is the totally ordered tier a provider reports for its media.
// Higher values compare greater.
type Quality uint8

const (
	QualityLow Quality = iota + 1
	QualityMedium
	QualityHigh
)

// ParseQuality converts a configuration string into a Quality tier.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "low":
		return QualityLow, nil
	case "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	default:
		return 0, fmt.Errorf("unknown quality %q", s)
	}
}

// String returns the configuration-facing name of the tier.
func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return "unknown"
	}
}
