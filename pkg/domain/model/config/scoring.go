// Package config holds the domain-level scoring configuration. The
// numeric constants here (weights, bands, deductions, breakpoints) are
// operational policy, not derived values; deployments may override them
// through the TOML scoring config.
package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// ScoringConfig drives every numeric decision of the posture engine.
type ScoringConfig struct {
	// Weights is the contribution of each completed source to the overall
	// score. Sources that have not completed are excluded and the
	// remaining weights are renormalized.
	Weights map[types.SourceKind]float64

	// RatingBands holds the inclusive lower bound of each rating band.
	RatingBands RatingBands

	// Deductions is the per-finding score deduction applied to the
	// vulnerability scan source, keyed by severity.
	Deductions map[types.Severity]int

	// RiskBreakpoints maps a likelihood x impact product onto a severity.
	RiskBreakpoints RiskBreakpoints

	// HistoryDays is the retention window of the posture history log.
	HistoryDays int

	// TopFindings caps the ranked finding list on a posture snapshot.
	TopFindings int

	// Timezone is the IANA zone used to bucket history entries into
	// organization-local days. Empty means UTC.
	Timezone string
}

// RatingBands holds inclusive lower bounds, e.g. a score of exactly
// Excellent maps to the Excellent band.
type RatingBands struct {
	Excellent int
	Good      int
	Fair      int
	Poor      int
}

// Rating maps a rounded overall score onto its qualitative band.
func (b RatingBands) Rating(score int) types.Rating {
	switch {
	case score >= b.Excellent:
		return types.RatingExcellent
	case score >= b.Good:
		return types.RatingGood
	case score >= b.Fair:
		return types.RatingFair
	case score >= b.Poor:
		return types.RatingPoor
	default:
		return types.RatingCritical
	}
}

// RiskBreakpoints holds inclusive lower bounds on the likelihood x impact
// product (1-25 scale).
type RiskBreakpoints struct {
	Critical int
	High     int
	Medium   int
}

// Severity maps a likelihood x impact product onto a severity.
func (b RiskBreakpoints) Severity(product int) types.Severity {
	switch {
	case product >= b.Critical:
		return types.SeverityCritical
	case product >= b.High:
		return types.SeverityHigh
	case product >= b.Medium:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// DefaultScoringConfig returns the stock configuration.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		Weights: map[types.SourceKind]float64{
			types.SourceSRA:      0.30,
			types.SourceITRisk:   0.30,
			types.SourceVulnScan: 0.40,
		},
		RatingBands: RatingBands{
			Excellent: 90,
			Good:      75,
			Fair:      60,
			Poor:      40,
		},
		Deductions: map[types.Severity]int{
			types.SeverityCritical: 20,
			types.SeverityHigh:     10,
			types.SeverityMedium:   5,
			types.SeverityLow:      2,
			types.SeverityInfo:     0,
		},
		RiskBreakpoints: RiskBreakpoints{
			Critical: 20,
			High:     12,
			Medium:   6,
		},
		HistoryDays: 90,
		TopFindings: 10,
	}
}

// Validate checks if the ScoringConfig is internally consistent.
func (c *ScoringConfig) Validate() error {
	if len(c.Weights) == 0 {
		return goerr.New("at least one source weight is required")
	}
	var total float64
	for kind, w := range c.Weights {
		if err := kind.Validate(); err != nil {
			return goerr.Wrap(err, "invalid weight source")
		}
		if w <= 0 {
			return goerr.New("source weight must be positive", goerr.V("kind", kind), goerr.V("weight", w))
		}
		total += w
	}
	if total <= 0 {
		return goerr.New("source weights must sum to a positive value")
	}

	b := c.RatingBands
	if !(b.Excellent > b.Good && b.Good > b.Fair && b.Fair > b.Poor && b.Poor > 0) {
		return goerr.New("rating bands must strictly descend",
			goerr.V("excellent", b.Excellent), goerr.V("good", b.Good),
			goerr.V("fair", b.Fair), goerr.V("poor", b.Poor))
	}

	for sev, d := range c.Deductions {
		if err := sev.Validate(); err != nil {
			return goerr.Wrap(err, "invalid deduction severity")
		}
		if d < 0 {
			return goerr.New("deduction cannot be negative", goerr.V("severity", sev), goerr.V("deduction", d))
		}
	}

	r := c.RiskBreakpoints
	if !(r.Critical > r.High && r.High > r.Medium && r.Medium > 0) {
		return goerr.New("risk breakpoints must strictly descend",
			goerr.V("critical", r.Critical), goerr.V("high", r.High), goerr.V("medium", r.Medium))
	}

	if c.HistoryDays <= 0 {
		return goerr.New("history retention must be positive", goerr.V("days", c.HistoryDays))
	}
	if c.TopFindings <= 0 {
		return goerr.New("top findings cap must be positive", goerr.V("cap", c.TopFindings))
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return goerr.Wrap(err, "invalid timezone", goerr.V("timezone", c.Timezone))
		}
	}

	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *ScoringConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
