// Package model contains the domain entities of the posture engine. All
// posture values are immutable snapshots recomputed from the stored
// assessment records; only the history log is owned, derived state.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// DateLayout is the canonical layout for history entry dates.
const DateLayout = "2006-01-02"

// AssessmentStatus describes the lifecycle and normalized score of one
// assessment source. Score is non-nil exactly when Phase is completed;
// use the constructors to preserve that invariant.
type AssessmentStatus struct {
	Source       types.SourceKind      `json:"source"`
	Name         string                `json:"name"`
	Phase        types.AssessmentPhase `json:"phase"`
	Score        *int                  `json:"score"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	FindingCount int                   `json:"finding_count"`
}

// NotStartedStatus returns the status for a source with no usable record.
func NotStartedStatus(kind types.SourceKind) AssessmentStatus {
	return AssessmentStatus{
		Source: kind,
		Name:   kind.DisplayName(),
		Phase:  types.PhaseNotStarted,
	}
}

// InProgressStatus returns the status for a source with recorded answers
// but no finalized report.
func InProgressStatus(kind types.SourceKind) AssessmentStatus {
	return AssessmentStatus{
		Source: kind,
		Name:   kind.DisplayName(),
		Phase:  types.PhaseInProgress,
	}
}

// CompletedStatus returns the status for a finalized assessment.
func CompletedStatus(kind types.SourceKind, score int, completedAt *time.Time, findingCount int) AssessmentStatus {
	return AssessmentStatus{
		Source:       kind,
		Name:         kind.DisplayName(),
		Phase:        types.PhaseCompleted,
		Score:        &score,
		CompletedAt:  completedAt,
		FindingCount: findingCount,
	}
}

// Finding is one identified gap contributing to risk, normalized across
// all sources. Immutable; regenerated on every posture computation.
type Finding struct {
	ID          string           `json:"id"`
	Source      types.SourceKind `json:"source"`
	Severity    types.Severity   `json:"severity"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Remediation string           `json:"remediation"`
}

// NewFinding builds a finding with a source-prefixed ID so merged finding
// sets cannot collide across sources.
func NewFinding(source types.SourceKind, localID string, severity types.Severity, title, description, remediation string) Finding {
	return Finding{
		ID:          fmt.Sprintf("%s:%s", source, localID),
		Source:      source,
		Severity:    severity,
		Title:       title,
		Description: description,
		Remediation: remediation,
	}
}

// Posture is the aggregate snapshot of an organization's security
// posture. Created fresh on every computation and never mutated.
type Posture struct {
	SnapshotID   types.SnapshotID   `json:"snapshot_id"`
	OverallScore int                `json:"overall_score"`
	Rating       types.Rating       `json:"rating"`
	Assessments  []AssessmentStatus `json:"assessments"`
	TopFindings  []Finding          `json:"top_findings"`
	History      []HistoryEntry     `json:"history"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// NewSnapshotID returns a fresh snapshot identifier.
func NewSnapshotID() types.SnapshotID {
	return types.SnapshotID(uuid.NewString())
}

// HistoryEntry is one organization-local day of posture history. At most
// one entry exists per date; a same-day recomputation overwrites it.
type HistoryEntry struct {
	Date     string `json:"date" firestore:"date"`
	Overall  int    `json:"overall" firestore:"overall"`
	SRA      *int   `json:"sra" firestore:"sra"`
	ITRisk   *int   `json:"it_risk" firestore:"it_risk"`
	VulnScan *int   `json:"vulnscan" firestore:"vulnscan"`
}

// SourceScore returns the recorded score for one source, nil when that
// source had not completed on the entry's date.
func (e HistoryEntry) SourceScore(kind types.SourceKind) *int {
	switch kind {
	case types.SourceSRA:
		return e.SRA
	case types.SourceITRisk:
		return e.ITRisk
	case types.SourceVulnScan:
		return e.VulnScan
	default:
		return nil
	}
}

// NewHistoryEntry derives the history entry for a posture snapshot at the
// given organization-local date.
func NewHistoryEntry(date string, p *Posture) HistoryEntry {
	entry := HistoryEntry{
		Date:    date,
		Overall: p.OverallScore,
	}
	for _, a := range p.Assessments {
		if a.Score == nil {
			continue
		}
		score := *a.Score
		switch a.Source {
		case types.SourceSRA:
			entry.SRA = &score
		case types.SourceITRisk:
			entry.ITRisk = &score
		case types.SourceVulnScan:
			entry.VulnScan = &score
		}
	}
	return entry
}
