package usecase

import (
	"fmt"
	"math"

	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/model/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// Score and risk extraction rules for the three assessment sources. All
// extractors are total functions over decoded records: a record in any
// phase yields a valid status and finding list without error.

// riskScoreCeiling is the top of the raw risk questionnaire scale; raw
// aggregate values at or above it normalize to a score of 0.
const riskScoreCeiling = 25.0

func extractComplianceStatus(rec *model.ComplianceRecord) model.AssessmentStatus {
	switch rec.Phase {
	case types.PhaseInProgress:
		return model.InProgressStatus(types.SourceSRA)
	case types.PhaseCompleted:
		var applicable, compliant int
		for _, a := range rec.Answers {
			if a.Answer == model.AnswerNA {
				continue
			}
			applicable++
			if a.Answer == model.AnswerYes {
				compliant++
			}
		}

		// Every answer not applicable means vacuously compliant; this
		// also covers the division by zero.
		score := 100
		if applicable > 0 {
			score = int(math.Round(100 * float64(compliant) / float64(applicable)))
		}
		return model.CompletedStatus(types.SourceSRA, score, rec.CompletedAt, 0)
	default:
		return model.NotStartedStatus(types.SourceSRA)
	}
}

func extractComplianceRisks(rec *model.ComplianceRecord) []model.Finding {
	if rec.Phase != types.PhaseCompleted {
		return nil
	}

	var findings []model.Finding
	for _, a := range rec.Answers {
		var severity types.Severity
		switch a.Answer {
		case model.AnswerNo:
			severity = types.SeverityHigh
		case model.AnswerPartial:
			severity = types.SeverityMedium
		default:
			continue
		}

		description := a.Notes
		if description == "" {
			description = fmt.Sprintf("Safeguard %s is not fully implemented.", a.QuestionID)
		}
		findings = append(findings, model.NewFinding(
			types.SourceSRA,
			a.QuestionID,
			severity,
			fmt.Sprintf("Compliance gap: %s", a.QuestionID),
			description,
			"Implement the safeguard and re-run the security risk assessment.",
		))
	}
	return findings
}

func extractRiskStatus(rec *model.RiskRecord) model.AssessmentStatus {
	switch rec.Phase {
	case types.PhaseInProgress:
		return model.InProgressStatus(types.SourceITRisk)
	case types.PhaseCompleted:
		// Raw scale is 1-25, lower is safer; a raw value of 0 means no
		// risk was recorded at all.
		normalized := 100 - (rec.OverallRiskScore/riskScoreCeiling)*100
		score := int(math.Round(normalized))
		if score < 0 {
			score = 0
		}
		return model.CompletedStatus(types.SourceITRisk, score, rec.CompletedAt, 0)
	default:
		return model.NotStartedStatus(types.SourceITRisk)
	}
}

func extractRiskRisks(rec *model.RiskRecord, breakpoints config.RiskBreakpoints) []model.Finding {
	if rec.Phase != types.PhaseCompleted {
		return nil
	}

	var findings []model.Finding
	for _, a := range rec.Answers {
		if a.Answer != model.AnswerNo && a.Answer != model.AnswerPartial {
			continue
		}

		product := a.Likelihood.Score() * a.Impact.Score()
		severity := breakpoints.Severity(product)

		description := a.Notes
		if description == "" {
			description = fmt.Sprintf("Risk %s rated %s likelihood with %s impact.",
				a.QuestionID, a.Likelihood, a.Impact)
		}
		findings = append(findings, model.NewFinding(
			types.SourceITRisk,
			a.QuestionID,
			severity,
			fmt.Sprintf("Risk exposure: %s", a.QuestionID),
			description,
			"Mitigate the risk or document compensating controls, then reassess.",
		))
	}
	return findings
}

func extractScanStatus(rec *model.ScanRecord, deductions map[types.Severity]int) model.AssessmentStatus {
	switch rec.Phase {
	case types.PhaseInProgress:
		return model.InProgressStatus(types.SourceVulnScan)
	case types.PhaseCompleted:
		score := 100
		for severity, count := range rec.SeverityBreakdown {
			score -= count * deductions[severity]
		}
		if score < 0 {
			score = 0
		}
		return model.CompletedStatus(types.SourceVulnScan, score, rec.CompletedAt, 0)
	default:
		return model.NotStartedStatus(types.SourceVulnScan)
	}
}

func extractScanRisks(rec *model.ScanRecord) []model.Finding {
	if rec.Phase != types.PhaseCompleted {
		return nil
	}

	var findings []model.Finding
	for i, f := range rec.Findings {
		// Informational findings are not actionable gaps.
		if f.Severity == types.SeverityInfo {
			continue
		}

		localID := f.ID
		if localID == "" {
			localID = fmt.Sprintf("finding-%d", i+1)
		}
		findings = append(findings, model.NewFinding(
			types.SourceVulnScan,
			localID,
			f.Severity,
			f.Title,
			f.Description,
			f.Remediation,
		))
	}
	return findings
}
