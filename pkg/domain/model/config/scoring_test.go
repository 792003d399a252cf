package config_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/phisec-lab/panoptes/pkg/domain/model/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

func TestDefaultScoringConfigIsValid(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	gt.NoError(t, cfg.Validate()).Required()

	gt.Value(t, cfg.Weights[types.SourceVulnScan]).Equal(0.40)
	gt.Value(t, cfg.Deductions[types.SeverityCritical]).Equal(20)
	gt.Value(t, cfg.HistoryDays).Equal(90)
	gt.Value(t, cfg.TopFindings).Equal(10)
}

func TestScoringConfigValidate(t *testing.T) {
	t.Run("rejects non-positive weight", func(t *testing.T) {
		cfg := config.DefaultScoringConfig()
		cfg.Weights[types.SourceSRA] = 0
		gt.Value(t, cfg.Validate()).NotNil()
	})

	t.Run("rejects unordered rating bands", func(t *testing.T) {
		cfg := config.DefaultScoringConfig()
		cfg.RatingBands.Good = 95
		gt.Value(t, cfg.Validate()).NotNil()
	})

	t.Run("rejects unordered breakpoints", func(t *testing.T) {
		cfg := config.DefaultScoringConfig()
		cfg.RiskBreakpoints.Medium = 15
		gt.Value(t, cfg.Validate()).NotNil()
	})

	t.Run("rejects negative deduction", func(t *testing.T) {
		cfg := config.DefaultScoringConfig()
		cfg.Deductions[types.SeverityLow] = -1
		gt.Value(t, cfg.Validate()).NotNil()
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		cfg := config.DefaultScoringConfig()
		cfg.Timezone = "Mars/Olympus_Mons"
		gt.Value(t, cfg.Validate()).NotNil()
	})

	t.Run("accepts valid timezone", func(t *testing.T) {
		cfg := config.DefaultScoringConfig()
		cfg.Timezone = "America/New_York"
		gt.NoError(t, cfg.Validate())
	})
}

func TestRiskBreakpointSeverity(t *testing.T) {
	b := config.DefaultScoringConfig().RiskBreakpoints

	cases := []struct {
		product int
		want    types.Severity
	}{
		{25, types.SeverityCritical},
		{20, types.SeverityCritical},
		{19, types.SeverityHigh},
		{12, types.SeverityHigh},
		{11, types.SeverityMedium},
		{6, types.SeverityMedium},
		{5, types.SeverityLow},
		{1, types.SeverityLow},
	}
	for _, tc := range cases {
		gt.Value(t, b.Severity(tc.product)).Equal(tc.want)
	}
}

func TestLocation(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	gt.Value(t, cfg.Location()).Equal(time.UTC)

	cfg.Timezone = "Asia/Tokyo"
	loc := cfg.Location()
	gt.Value(t, loc.String()).Equal("Asia/Tokyo")

	cfg.Timezone = "not-a-zone"
	gt.Value(t, cfg.Location()).Equal(time.UTC)
}
