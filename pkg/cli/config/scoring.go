package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/phisec-lab/panoptes/pkg/domain/model/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Scoring holds the CLI flag for the scoring policy file.
type Scoring struct {
	path string
}

func (s *Scoring) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scoring-config",
			Usage:       "Path to scoring policy TOML file (stock policy when empty)",
			Category:    "Scoring",
			Sources:     cli.EnvVars("PANOPTES_SCORING_CONFIG"),
			Destination: &s.path,
		},
	}
}

// ScoringFile is the TOML representation of the scoring policy. Every
// section is optional; omitted sections keep the stock values.
type ScoringFile struct {
	Weights     []SourceWeight `toml:"weight"`
	Ratings     *RatingBands   `toml:"ratings"`
	Deductions  []Deduction    `toml:"deduction"`
	Breakpoints *Breakpoints   `toml:"breakpoints"`
	HistoryDays int            `toml:"history_days"`
	TopFindings int            `toml:"top_findings"`
	Timezone    string         `toml:"timezone"`
}

// SourceWeight represents one source weight entry.
type SourceWeight struct {
	Source string  `toml:"source"`
	Weight float64 `toml:"weight"`
}

// RatingBands represents the rating band lower bounds.
type RatingBands struct {
	Excellent int `toml:"excellent"`
	Good      int `toml:"good"`
	Fair      int `toml:"fair"`
	Poor      int `toml:"poor"`
}

// Deduction represents one per-severity scan deduction entry.
type Deduction struct {
	Severity string `toml:"severity"`
	Points   int    `toml:"points"`
}

// Breakpoints represents the likelihood x impact severity breakpoints.
type Breakpoints struct {
	Critical int `toml:"critical"`
	High     int `toml:"high"`
	Medium   int `toml:"medium"`
}

// Configure loads and validates the scoring policy. Without a path the
// stock policy is returned.
func (s *Scoring) Configure() (*domainConfig.ScoringConfig, error) {
	cfg := domainConfig.DefaultScoringConfig()
	if s.path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read scoring config", goerr.V("path", s.path))
	}

	var file ScoringFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse scoring config", goerr.V("path", s.path))
	}

	file.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid scoring config", goerr.V("path", s.path))
	}
	return cfg, nil
}

func (f *ScoringFile) apply(cfg *domainConfig.ScoringConfig) {
	if len(f.Weights) > 0 {
		weights := make(map[types.SourceKind]float64, len(f.Weights))
		for _, w := range f.Weights {
			weights[types.SourceKind(w.Source)] = w.Weight
		}
		cfg.Weights = weights
	}
	if f.Ratings != nil {
		cfg.RatingBands = domainConfig.RatingBands{
			Excellent: f.Ratings.Excellent,
			Good:      f.Ratings.Good,
			Fair:      f.Ratings.Fair,
			Poor:      f.Ratings.Poor,
		}
	}
	if len(f.Deductions) > 0 {
		deductions := make(map[types.Severity]int, len(f.Deductions))
		for _, d := range f.Deductions {
			deductions[types.Severity(d.Severity)] = d.Points
		}
		cfg.Deductions = deductions
	}
	if f.Breakpoints != nil {
		cfg.RiskBreakpoints = domainConfig.RiskBreakpoints{
			Critical: f.Breakpoints.Critical,
			High:     f.Breakpoints.High,
			Medium:   f.Breakpoints.Medium,
		}
	}
	if f.HistoryDays > 0 {
		cfg.HistoryDays = f.HistoryDays
	}
	if f.TopFindings > 0 {
		cfg.TopFindings = f.TopFindings
	}
	if f.Timezone != "" {
		cfg.Timezone = f.Timezone
	}
}

// Path returns the configured policy file path.
func (s *Scoring) Path() string {
	return s.path
}
