package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

func TestSeverityRankOrdering(t *testing.T) {
	severities := types.Severities()
	for i := 1; i < len(severities); i++ {
		gt.Bool(t, severities[i-1].Rank() > severities[i].Rank()).True()
	}
	gt.Value(t, types.Severity("bogus").Rank()).Equal(0)
}

func TestNormalizeSeverity(t *testing.T) {
	cases := []struct {
		raw  string
		want types.Severity
	}{
		{"critical", types.SeverityCritical},
		{"Very-High", types.SeverityCritical},
		{"  HIGH ", types.SeverityHigh},
		{"moderate", types.SeverityMedium},
		{"low", types.SeverityLow},
		{"informational", types.SeverityInfo},
		{"", types.SeverityInfo},
		{"P1", types.SeverityInfo},
	}
	for _, tc := range cases {
		gt.Value(t, types.NormalizeSeverity(tc.raw)).Equal(tc.want)
	}
}

func TestRatingDegraded(t *testing.T) {
	gt.Bool(t, types.RatingExcellent.Degraded()).False()
	gt.Bool(t, types.RatingGood.Degraded()).False()
	gt.Bool(t, types.RatingFair.Degraded()).False()
	gt.Bool(t, types.RatingPoor.Degraded()).True()
	gt.Bool(t, types.RatingCritical.Degraded()).True()
}

func TestOrgIDValidate(t *testing.T) {
	gt.NoError(t, types.OrgID("mercy-general").Validate())
	gt.NoError(t, types.OrgID("org1").Validate())

	for _, bad := range []string{"", "Mercy General", "-leading", "trailing-", "double--dash", "UPPER"} {
		gt.Value(t, types.OrgID(bad).Validate()).NotNil()
	}
}

func TestSourceKindValidate(t *testing.T) {
	for _, kind := range types.SourceKinds() {
		gt.NoError(t, kind.Validate())
		gt.Value(t, kind.DisplayName()).NotEqual("")
	}
	gt.Value(t, types.SourceKind("pentest").Validate()).NotNil()
}
