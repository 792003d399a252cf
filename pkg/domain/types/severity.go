package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Severity represents the normalized severity of a finding. The set is
// totally ordered; use Rank for comparisons.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities returns all valid severities, highest first.
func Severities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInfo,
	}
}

// Rank returns the ordering weight of the severity: critical=5 down to
// info=1. Unrecognized values rank 0 so they sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Validate checks if the Severity is one of the known levels.
func (s Severity) Validate() error {
	if s.Rank() == 0 {
		return goerr.New("invalid severity", goerr.V("severity", s))
	}
	return nil
}

// String returns the string representation of Severity.
func (s Severity) String() string {
	return string(s)
}

// NormalizeSeverity maps scanner-reported severity labels onto the
// normalized set. Unrecognized labels map to info so imported findings
// never escalate on bad data.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "very-high", "very high", "veryhigh":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}
