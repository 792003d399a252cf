package usecase

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/model/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/utils/logging"
)

// PostureUseCase computes unified posture snapshots and maintains the
// rolling history log.
type PostureUseCase struct {
	repo    interfaces.Repository
	scoring *config.ScoringConfig

	notifier Notifier
	archiver Archiver
	now      func() time.Time

	// historyMu serializes the read-modify-write of the history log so
	// concurrent recomputations cannot interleave upsert and prune.
	historyMu sync.Mutex
}

func NewPostureUseCase(repo interfaces.Repository, scoring *config.ScoringConfig) *PostureUseCase {
	return &PostureUseCase{
		repo:    repo,
		scoring: scoring,
		now:     time.Now,
	}
}

// Compute builds a fresh posture snapshot for the organization. It is a
// pure read: the history log is attached as-is and nothing is written.
// Malformed or missing assessment records degrade to not-started for
// that source only; Compute itself never fails on bad data.
func (uc *PostureUseCase) Compute(ctx context.Context, org types.OrgID) (*model.Posture, error) {
	if err := org.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid organization")
	}

	var assessments []model.AssessmentStatus
	var findings []model.Finding

	for _, kind := range types.SourceKinds() {
		raw := uc.loadRecord(ctx, org, kind)

		var status model.AssessmentStatus
		var sourceFindings []model.Finding
		switch kind {
		case types.SourceSRA:
			rec := model.DecodeComplianceRecord(raw)
			status = extractComplianceStatus(rec)
			sourceFindings = extractComplianceRisks(rec)
		case types.SourceITRisk:
			rec := model.DecodeRiskRecord(raw)
			status = extractRiskStatus(rec)
			sourceFindings = extractRiskRisks(rec, uc.scoring.RiskBreakpoints)
		case types.SourceVulnScan:
			rec := model.DecodeScanRecord(raw)
			status = extractScanStatus(rec, uc.scoring.Deductions)
			sourceFindings = extractScanRisks(rec)
		}

		status.FindingCount = len(sourceFindings)
		assessments = append(assessments, status)
		findings = append(findings, sourceFindings...)
	}

	overall := uc.overallScore(assessments)

	// Stable sort keeps discovery order within a severity.
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() > findings[j].Severity.Rank()
	})
	if len(findings) > uc.scoring.TopFindings {
		findings = findings[:uc.scoring.TopFindings]
	}

	history, err := uc.repo.History().List(ctx, org)
	if err != nil {
		// A broken trend line must not block the dashboard.
		logging.From(ctx).Warn("failed to load posture history", "org", org, "error", err)
		history = nil
	}

	return &model.Posture{
		SnapshotID:   model.NewSnapshotID(),
		OverallScore: overall,
		Rating:       uc.scoring.RatingBands.Rating(overall),
		Assessments:  assessments,
		TopFindings:  findings,
		History:      history,
		GeneratedAt:  uc.now().UTC(),
	}, nil
}

// History returns the rolling posture history, oldest first.
func (uc *PostureUseCase) History(ctx context.Context, org types.OrgID) ([]model.HistoryEntry, error) {
	if err := org.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid organization")
	}
	entries, err := uc.repo.History().List(ctx, org)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list posture history", goerr.V("org", org))
	}
	return entries, nil
}

// loadRecord fetches the raw bytes for one source. Every failure mode,
// absent record included, maps to nil so the decoder produces the
// not-started variant.
func (uc *PostureUseCase) loadRecord(ctx context.Context, org types.OrgID, kind types.SourceKind) []byte {
	raw, err := uc.repo.Assessment().Get(ctx, org, kind)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			logging.From(ctx).Warn("failed to load assessment record",
				"org", org, "kind", kind, "error", err)
		}
		return nil
	}
	return raw
}

// overallScore computes the weighted average over completed sources
// only. Excluded sources do not count as zero: the divisor is the sum of
// included weights, so a single completed source carries its own score.
func (uc *PostureUseCase) overallScore(assessments []model.AssessmentStatus) int {
	var weighted, totalWeight float64
	for _, a := range assessments {
		if a.Phase != types.PhaseCompleted || a.Score == nil {
			continue
		}
		w := uc.scoring.Weights[a.Source]
		weighted += float64(*a.Score) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(weighted / totalWeight))
}

// Record derives the organization-local date and upserts one history
// entry for it, then prunes entries older than the retention window. A
// same-day call overwrites; history never holds two entries per date.
func (uc *PostureUseCase) Record(ctx context.Context, org types.OrgID, posture *model.Posture) error {
	uc.historyMu.Lock()
	defer uc.historyMu.Unlock()

	loc := uc.scoring.Location()
	now := uc.now().In(loc)
	entry := model.NewHistoryEntry(now.Format(model.DateLayout), posture)

	if err := uc.repo.History().Upsert(ctx, org, entry); err != nil {
		return goerr.Wrap(err, "failed to record posture snapshot",
			goerr.V("org", org), goerr.V("date", entry.Date))
	}

	cutoff := now.AddDate(0, 0, -uc.scoring.HistoryDays).Format(model.DateLayout)
	if err := uc.repo.History().DeleteBefore(ctx, org, cutoff); err != nil {
		return goerr.Wrap(err, "failed to prune posture history",
			goerr.V("org", org), goerr.V("cutoff", cutoff))
	}

	return nil
}

// Finalize runs the post-compute side effects: persist today's history
// point, fire a degradation alert when the rating newly entered a
// degraded band, and export the snapshot to the archive. Alert and
// archive failures are logged, not propagated; only a failed history
// write is returned so callers can decide whether to surface it.
func (uc *PostureUseCase) Finalize(ctx context.Context, org types.OrgID, posture *model.Posture) error {
	previous := previousRating(posture, uc.scoring)

	recordErr := uc.Record(ctx, org, posture)

	if uc.notifier != nil && posture.Rating.Degraded() && (previous == nil || !previous.Degraded()) {
		if err := uc.notifier.PostureDegraded(ctx, org, posture); err != nil {
			logging.From(ctx).Warn("failed to send degradation alert", "org", org, "error", err)
		}
	}

	if uc.archiver != nil {
		if err := uc.archiver.Export(ctx, org, posture); err != nil {
			logging.From(ctx).Warn("failed to archive posture snapshot", "org", org, "error", err)
		}
	}

	return recordErr
}

// ComputeAndRecord runs the fixed two-step sequence: compute the
// snapshot, then finalize it. The finalize step is best-effort; its
// failure only costs the trend line a data point and the computed
// snapshot is still returned.
func (uc *PostureUseCase) ComputeAndRecord(ctx context.Context, org types.OrgID) (*model.Posture, error) {
	posture, err := uc.Compute(ctx, org)
	if err != nil {
		return nil, err
	}

	if err := uc.Finalize(ctx, org, posture); err != nil {
		logging.From(ctx).Warn("posture snapshot not recorded", "org", org, "error", err)
	}

	return posture, nil
}

// previousRating derives the rating band of the latest history entry
// attached to the snapshot, nil when there is no history yet.
func previousRating(posture *model.Posture, scoring *config.ScoringConfig) *types.Rating {
	if len(posture.History) == 0 {
		return nil
	}
	last := posture.History[len(posture.History)-1]
	rating := scoring.RatingBands.Rating(last.Overall)
	return &rating
}
