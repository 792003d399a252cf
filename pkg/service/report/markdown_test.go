package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/service/report"
)

func TestMarkdownReport(t *testing.T) {
	score := 60
	posture := &model.Posture{
		SnapshotID:   "snap-1",
		OverallScore: 69,
		Rating:       types.RatingFair,
		Assessments: []model.AssessmentStatus{
			model.CompletedStatus(types.SourceVulnScan, score, nil, 2),
			model.NotStartedStatus(types.SourceSRA),
		},
		TopFindings: []model.Finding{
			model.NewFinding(types.SourceVulnScan, "v-1", types.SeverityCritical,
				"Unpatched VPN appliance", "CVE-2026-0001 on the edge VPN.", "Apply vendor patch."),
		},
		History: []model.HistoryEntry{
			{Date: "2026-08-29", Overall: 66},
		},
		GeneratedAt: time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC),
	}

	md, err := report.Markdown("mercy-general", posture)
	gt.NoError(t, err).Required()

	for _, want := range []string{
		"# Security Posture Report",
		"mercy-general",
		"69 / 100 (Fair)",
		"Vulnerability Scan",
		"[critical] Unpatched VPN appliance",
		"Apply vendor patch.",
		"| 2026-08-29 | 66 |",
	} {
		gt.Bool(t, strings.Contains(md, want)).True()
	}
}

func TestMarkdownReportEmpty(t *testing.T) {
	posture := &model.Posture{
		Rating:      types.RatingCritical,
		GeneratedAt: time.Now(),
	}

	md, err := report.Markdown("mercy-general", posture)
	gt.NoError(t, err).Required()
	gt.Bool(t, strings.Contains(md, "No open findings.")).True()
}
