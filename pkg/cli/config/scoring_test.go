package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/phisec-lab/panoptes/pkg/cli/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

func writeScoringFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoring.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644)).Required()
	return path
}

func configureScoring(t *testing.T, path string) *config.Scoring {
	t.Helper()
	return config.NewScoringForTest(path)
}

func TestScoringConfigureDefaults(t *testing.T) {
	s := &config.Scoring{}
	cfg, err := s.Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.HistoryDays).Equal(90)
	gt.Value(t, cfg.Weights[types.SourceVulnScan]).Equal(0.40)
}

func TestScoringConfigureOverrides(t *testing.T) {
	path := writeScoringFile(t, `
history_days = 30
top_findings = 5
timezone = "America/Chicago"

[ratings]
excellent = 95
good = 80
fair = 65
poor = 45

[breakpoints]
critical = 22
high = 14
medium = 7

[[weight]]
source = "sra"
weight = 0.5

[[weight]]
source = "it-risk"
weight = 0.25

[[weight]]
source = "vulnscan"
weight = 0.25

[[deduction]]
severity = "critical"
points = 25

[[deduction]]
severity = "high"
points = 12

[[deduction]]
severity = "medium"
points = 6

[[deduction]]
severity = "low"
points = 3
`)

	cfg, err := configureScoring(t, path).Configure()
	gt.NoError(t, err).Required()

	gt.Value(t, cfg.HistoryDays).Equal(30)
	gt.Value(t, cfg.TopFindings).Equal(5)
	gt.Value(t, cfg.Timezone).Equal("America/Chicago")
	gt.Value(t, cfg.RatingBands.Excellent).Equal(95)
	gt.Value(t, cfg.RiskBreakpoints.High).Equal(14)
	gt.Value(t, cfg.Weights[types.SourceSRA]).Equal(0.5)
	gt.Value(t, cfg.Deductions[types.SeverityCritical]).Equal(25)
}

func TestScoringConfigurePartialOverride(t *testing.T) {
	path := writeScoringFile(t, `history_days = 60`)

	cfg, err := configureScoring(t, path).Configure()
	gt.NoError(t, err).Required()

	gt.Value(t, cfg.HistoryDays).Equal(60)
	// Untouched sections keep the stock values.
	gt.Value(t, cfg.TopFindings).Equal(10)
	gt.Value(t, cfg.RatingBands.Excellent).Equal(90)
}

func TestScoringConfigureRejectsInvalid(t *testing.T) {
	t.Run("bad TOML", func(t *testing.T) {
		path := writeScoringFile(t, `[ratings`)
		_, err := configureScoring(t, path).Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("unordered bands", func(t *testing.T) {
		path := writeScoringFile(t, `
[ratings]
excellent = 50
good = 80
fair = 65
poor = 45
`)
		_, err := configureScoring(t, path).Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("unknown weight source", func(t *testing.T) {
		path := writeScoringFile(t, `
[[weight]]
source = "pentest"
weight = 1.0
`)
		_, err := configureScoring(t, path).Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := configureScoring(t, "/nonexistent/scoring.toml").Configure()
		gt.Value(t, err).NotNil()
	})
}
