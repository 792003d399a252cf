package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/model/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/repository/memory"
	"github.com/phisec-lab/panoptes/pkg/usecase"
)

const testOrg = types.OrgID("mercy-general")

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-08-30T15:00:00Z")
	gt.NoError(t, err).Required()
	return func() time.Time { return ts }
}

func newUseCases(t *testing.T, repo *memory.Memory, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	opts = append([]usecase.Option{usecase.WithClock(fixedClock(t))}, opts...)
	return usecase.New(repo, opts...)
}

func putRecord(t *testing.T, repo *memory.Memory, kind types.SourceKind, raw string) {
	t.Helper()
	gt.NoError(t, repo.Assessment().Put(context.Background(), testOrg, kind, []byte(raw))).Required()
}

func complianceRecord(answers ...string) string {
	responses := ""
	for i, a := range answers {
		if i > 0 {
			responses += ","
		}
		responses += fmt.Sprintf(`{"questionId":"q-%d","answer":"%s"}`, i+1, a)
	}
	return fmt.Sprintf(`{"report":{"results":[{"responses":[%s]}],"completedAt":"2026-08-29T09:00:00Z"}}`, responses)
}

func riskRecord(overall float64) string {
	return fmt.Sprintf(`{"report":{"overallRiskScore":%g,"results":[],"completedAt":"2026-08-29T09:00:00Z"}}`, overall)
}

func scanRecord(critical, high, medium, low int) string {
	return fmt.Sprintf(
		`{"scans":[],"severityBreakdown":{"critical":%d,"high":%d,"medium":%d,"low":%d},"completedAt":"2026-08-29T09:00:00Z"}`,
		critical, high, medium, low)
}

func sourceStatus(t *testing.T, posture *model.Posture, kind types.SourceKind) model.AssessmentStatus {
	t.Helper()
	for _, a := range posture.Assessments {
		if a.Source == kind {
			return a
		}
	}
	t.Fatalf("no status for source %s", kind)
	return model.AssessmentStatus{}
}

func TestComputeVacuousCompliance(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceSRA, complianceRecord("na", "na", "na"))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	status := sourceStatus(t, posture, types.SourceSRA)
	gt.Value(t, status.Phase).Equal(types.PhaseCompleted)
	gt.Value(t, *status.Score).Equal(100)
}

func TestComputeZeroRawScores(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceITRisk, riskRecord(0))
	putRecord(t, repo, types.SourceVulnScan, scanRecord(0, 0, 0, 0))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, *sourceStatus(t, posture, types.SourceITRisk).Score).Equal(100)
	gt.Value(t, *sourceStatus(t, posture, types.SourceVulnScan).Score).Equal(100)
}

func TestComputeDeductionFloor(t *testing.T) {
	repo := memory.New()
	// 6 criticals deduct 120 points; the score floors at zero.
	putRecord(t, repo, types.SourceVulnScan, scanRecord(6, 0, 0, 0))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, *sourceStatus(t, posture, types.SourceVulnScan).Score).Equal(0)
}

func TestComputeScanScoreCeiling(t *testing.T) {
	repo := memory.New()
	// Negative counts from a malformed import must not credit the
	// score past 100.
	putRecord(t, repo, types.SourceVulnScan, scanRecord(-5, 1, 0, 0))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, *sourceStatus(t, posture, types.SourceVulnScan).Score).Equal(90)
}

func TestComputeWeightRenormalization(t *testing.T) {
	repo := memory.New()
	// Only the scan completed: breakdown of 2 highs scores 80. The other
	// sources are excluded from the average, not counted as zero.
	putRecord(t, repo, types.SourceVulnScan, scanRecord(0, 2, 0, 0))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, posture.OverallScore).Equal(80)
	gt.Value(t, sourceStatus(t, posture, types.SourceSRA).Phase).Equal(types.PhaseNotStarted)
	gt.Value(t, sourceStatus(t, posture, types.SourceITRisk).Phase).Equal(types.PhaseNotStarted)
}

func TestComputeNoCompletedSources(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, posture.OverallScore).Equal(0)
	gt.Value(t, posture.Rating).Equal(types.RatingCritical)
	gt.Array(t, posture.Assessments).Length(3)
	gt.Array(t, posture.TopFindings).Length(0)
}

func TestRatingBoundaries(t *testing.T) {
	bands := config.DefaultScoringConfig().RatingBands

	cases := []struct {
		score  int
		rating types.Rating
	}{
		{90, types.RatingExcellent},
		{75, types.RatingGood},
		{60, types.RatingFair},
		{40, types.RatingPoor},
		{39, types.RatingCritical},
	}
	for _, tc := range cases {
		gt.Value(t, bands.Rating(tc.score)).Equal(tc.rating)
	}
}

func TestComputeTopFindingsTruncationAndOrder(t *testing.T) {
	repo := memory.New()

	// 15 scan findings of mixed severities.
	findings := ""
	severities := []string{
		"critical", "medium", "high", "low", "medium",
		"high", "critical", "low", "medium", "high",
		"low", "medium", "high", "critical", "medium",
	}
	for i, sev := range severities {
		if i > 0 {
			findings += ","
		}
		findings += fmt.Sprintf(`{"id":"v-%d","severity":"%s","title":"Vuln %d"}`, i+1, sev, i+1)
	}
	raw := fmt.Sprintf(`{"scans":[{"findings":[%s]}],"completedAt":"2026-08-29T09:00:00Z"}`, findings)
	putRecord(t, repo, types.SourceVulnScan, raw)

	uc := newUseCases(t, repo)
	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Array(t, posture.TopFindings).Length(10)
	for i := 1; i < len(posture.TopFindings); i++ {
		prev := posture.TopFindings[i-1].Severity.Rank()
		cur := posture.TopFindings[i].Severity.Rank()
		gt.Bool(t, prev >= cur).True()
	}
	gt.Value(t, posture.TopFindings[0].Severity).Equal(types.SeverityCritical)
}

func TestComputeCorruptRecordIsolation(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceSRA, `this is not json at all {{{`)
	putRecord(t, repo, types.SourceITRisk, riskRecord(12.5))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, sourceStatus(t, posture, types.SourceSRA).Phase).Equal(types.PhaseNotStarted)
	gt.Value(t, sourceStatus(t, posture, types.SourceSRA).FindingCount).Equal(0)
	gt.Value(t, *sourceStatus(t, posture, types.SourceITRisk).Score).Equal(50)
	gt.Value(t, posture.OverallScore).Equal(50)
}

func TestRecordSameDayOverwrites(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(t, repo)
	ctx := context.Background()

	first := &model.Posture{OverallScore: 55}
	gt.NoError(t, uc.Posture.Record(ctx, testOrg, first)).Required()

	second := &model.Posture{OverallScore: 72}
	gt.NoError(t, uc.Posture.Record(ctx, testOrg, second)).Required()

	entries, err := repo.History().List(ctx, testOrg)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1)
	gt.Value(t, entries[0].Date).Equal("2026-08-30")
	gt.Value(t, entries[0].Overall).Equal(72)
}

func TestRecordPrunesOldEntries(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(t, repo)
	ctx := context.Background()

	// 91 days before the fixed clock date.
	gt.NoError(t, repo.History().Upsert(ctx, testOrg, model.HistoryEntry{
		Date:    "2026-05-31",
		Overall: 40,
	})).Required()
	// Exactly at the retention boundary; must survive.
	gt.NoError(t, repo.History().Upsert(ctx, testOrg, model.HistoryEntry{
		Date:    "2026-06-01",
		Overall: 45,
	})).Required()

	gt.NoError(t, uc.Posture.Record(ctx, testOrg, &model.Posture{OverallScore: 70})).Required()

	entries, err := repo.History().List(ctx, testOrg)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(2)
	gt.Value(t, entries[0].Date).Equal("2026-06-01")
	gt.Value(t, entries[1].Date).Equal("2026-08-30")
}

func TestComputeEndToEnd(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceSRA, complianceRecord(
		"yes", "yes", "yes", "yes", "yes", "yes", "yes", "yes", "na", "na"))
	putRecord(t, repo, types.SourceITRisk, riskRecord(12.5))
	putRecord(t, repo, types.SourceVulnScan, scanRecord(1, 2, 0, 0))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	gt.Value(t, *sourceStatus(t, posture, types.SourceSRA).Score).Equal(100)
	gt.Value(t, *sourceStatus(t, posture, types.SourceITRisk).Score).Equal(50)
	gt.Value(t, *sourceStatus(t, posture, types.SourceVulnScan).Score).Equal(60)
	gt.Value(t, posture.OverallScore).Equal(69)
	gt.Value(t, posture.Rating).Equal(types.RatingFair)
}

func TestComputeAndRecordAppendsHistory(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceITRisk, riskRecord(5))
	uc := newUseCases(t, repo)
	ctx := context.Background()

	posture, err := uc.Posture.ComputeAndRecord(ctx, testOrg)
	gt.NoError(t, err).Required()
	gt.Value(t, posture.OverallScore).Equal(80)

	entries, err := repo.History().List(ctx, testOrg)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1)
	gt.Value(t, entries[0].Overall).Equal(80)
	gt.Value(t, *entries[0].ITRisk).Equal(80)
	gt.Value(t, entries[0].SRA).Nil()
	gt.Value(t, entries[0].VulnScan).Nil()
}

type unavailableHistory struct {
	interfaces.HistoryRepository
}

func (r *unavailableHistory) Upsert(ctx context.Context, org types.OrgID, entry model.HistoryEntry) error {
	return goerr.New("history store unavailable")
}

type unavailableHistoryRepo struct {
	*memory.Memory
}

func (r *unavailableHistoryRepo) History() interfaces.HistoryRepository {
	return &unavailableHistory{r.Memory.History()}
}

func TestComputeAndRecordSurvivesHistoryFailure(t *testing.T) {
	repo := &unavailableHistoryRepo{Memory: memory.New()}
	putRecord(t, repo.Memory, types.SourceITRisk, riskRecord(5))
	uc := usecase.New(repo, usecase.WithClock(fixedClock(t)))

	// The write failure is logged, not propagated; the computed
	// snapshot is still handed back for display.
	posture, err := uc.Posture.ComputeAndRecord(context.Background(), testOrg)
	gt.NoError(t, err).Required()
	gt.Value(t, posture.OverallScore).Equal(80)
	gt.Value(t, posture.Rating).Equal(types.RatingGood)
}

func TestComputeInProgressRecord(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceSRA, `{"responses":{"q-1":{"answer":"yes"}}}`)
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	status := sourceStatus(t, posture, types.SourceSRA)
	gt.Value(t, status.Phase).Equal(types.PhaseInProgress)
	gt.Value(t, status.Score).Nil()
}

func TestComputeComplianceFindings(t *testing.T) {
	repo := memory.New()
	putRecord(t, repo, types.SourceSRA, complianceRecord("yes", "no", "partial", "na"))
	uc := newUseCases(t, repo)

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	// Applicable: yes, no, partial. Compliant: yes only.
	gt.Value(t, *sourceStatus(t, posture, types.SourceSRA).Score).Equal(33)
	gt.Value(t, sourceStatus(t, posture, types.SourceSRA).FindingCount).Equal(2)

	gt.Array(t, posture.TopFindings).Length(2)
	gt.Value(t, posture.TopFindings[0].Severity).Equal(types.SeverityHigh)
	gt.Value(t, posture.TopFindings[0].ID).Equal("sra:q-2")
	gt.Value(t, posture.TopFindings[1].Severity).Equal(types.SeverityMedium)
	gt.Value(t, posture.TopFindings[1].ID).Equal("sra:q-3")
}

type captureNotifier struct {
	calls []types.OrgID
}

func (n *captureNotifier) PostureDegraded(ctx context.Context, org types.OrgID, posture *model.Posture) error {
	n.calls = append(n.calls, org)
	return nil
}

func TestFinalizeDegradationAlert(t *testing.T) {
	t.Run("fires when rating newly degrades", func(t *testing.T) {
		repo := memory.New()
		notifier := &captureNotifier{}
		uc := newUseCases(t, repo, usecase.WithNotifier(notifier))
		ctx := context.Background()

		gt.NoError(t, repo.History().Upsert(ctx, testOrg, model.HistoryEntry{
			Date:    "2026-08-29",
			Overall: 80,
		})).Required()
		putRecord(t, repo, types.SourceVulnScan, scanRecord(4, 0, 0, 0))

		posture, err := uc.Posture.Compute(ctx, testOrg)
		gt.NoError(t, err).Required()
		gt.Value(t, posture.Rating).Equal(types.RatingCritical)

		gt.NoError(t, uc.Posture.Finalize(ctx, testOrg, posture)).Required()
		gt.Array(t, notifier.calls).Length(1)
	})

	t.Run("silent when already degraded", func(t *testing.T) {
		repo := memory.New()
		notifier := &captureNotifier{}
		uc := newUseCases(t, repo, usecase.WithNotifier(notifier))
		ctx := context.Background()

		gt.NoError(t, repo.History().Upsert(ctx, testOrg, model.HistoryEntry{
			Date:    "2026-08-29",
			Overall: 30,
		})).Required()
		putRecord(t, repo, types.SourceVulnScan, scanRecord(4, 0, 0, 0))

		posture, err := uc.Posture.Compute(ctx, testOrg)
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Posture.Finalize(ctx, testOrg, posture)).Required()
		gt.Array(t, notifier.calls).Length(0)
	})

	t.Run("silent when rating is healthy", func(t *testing.T) {
		repo := memory.New()
		notifier := &captureNotifier{}
		uc := newUseCases(t, repo, usecase.WithNotifier(notifier))
		ctx := context.Background()

		putRecord(t, repo, types.SourceITRisk, riskRecord(2))

		posture, err := uc.Posture.Compute(ctx, testOrg)
		gt.NoError(t, err).Required()
		gt.Bool(t, posture.Rating.Degraded()).False()

		gt.NoError(t, uc.Posture.Finalize(ctx, testOrg, posture)).Required()
		gt.Array(t, notifier.calls).Length(0)
	})
}

func TestComputeInvalidOrg(t *testing.T) {
	repo := memory.New()
	uc := newUseCases(t, repo)

	_, err := uc.Posture.Compute(context.Background(), types.OrgID("Not Valid!"))
	gt.Value(t, err).NotNil()
}

func TestComputeWithCustomScoring(t *testing.T) {
	repo := memory.New()
	cfg := config.DefaultScoringConfig()
	cfg.Weights = map[types.SourceKind]float64{
		types.SourceSRA:      0.5,
		types.SourceITRisk:   0.5,
		types.SourceVulnScan: 0.0001,
	}
	cfg.TopFindings = 3
	gt.NoError(t, cfg.Validate()).Required()

	putRecord(t, repo, types.SourceSRA, complianceRecord("yes", "no"))
	putRecord(t, repo, types.SourceITRisk, riskRecord(0))
	uc := newUseCases(t, repo, usecase.WithScoringConfig(cfg))

	posture, err := uc.Posture.Compute(context.Background(), testOrg)
	gt.NoError(t, err).Required()

	// (50*0.5 + 100*0.5) / 1.0
	gt.Value(t, posture.OverallScore).Equal(75)
}
