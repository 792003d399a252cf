package model

import (
	"encoding/json"
	"time"

	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// Answer values recorded by the questionnaires.
const (
	AnswerYes     = "yes"
	AnswerNo      = "no"
	AnswerNA      = "na"
	AnswerPartial = "partial"
)

// The decoders below turn the raw stored bytes of one assessment into a
// phase-tagged record. They never fail: absent, truncated, or otherwise
// unparseable input yields the not-started variant, and answers recorded
// without a finalized report yield in-progress. A corrupted record must
// never take the whole dashboard down.

// ComplianceRecord is the decoded SRA compliance questionnaire.
type ComplianceRecord struct {
	Phase       types.AssessmentPhase
	Answers     []ComplianceAnswer
	CompletedAt *time.Time
}

// ComplianceAnswer is one finalized questionnaire answer.
type ComplianceAnswer struct {
	QuestionID string
	Answer     string
	Notes      string
}

type complianceAnswerJSON struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Notes      string `json:"notes"`
}

type complianceRecordJSON struct {
	Responses map[string]json.RawMessage `json:"responses"`
	Report    *struct {
		Results []struct {
			Responses []complianceAnswerJSON `json:"responses"`
		} `json:"results"`
		CompletedAt json.RawMessage `json:"completedAt"`
	} `json:"report"`
}

// DecodeComplianceRecord decodes the stored SRA record.
func DecodeComplianceRecord(raw []byte) *ComplianceRecord {
	var doc complianceRecordJSON
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return &ComplianceRecord{Phase: types.PhaseNotStarted}
	}

	if doc.Report == nil {
		if len(doc.Responses) > 0 {
			return &ComplianceRecord{Phase: types.PhaseInProgress}
		}
		return &ComplianceRecord{Phase: types.PhaseNotStarted}
	}

	rec := &ComplianceRecord{
		Phase:       types.PhaseCompleted,
		CompletedAt: parseTimestamp(doc.Report.CompletedAt),
	}
	for _, result := range doc.Report.Results {
		for _, a := range result.Responses {
			rec.Answers = append(rec.Answers, ComplianceAnswer{
				QuestionID: a.QuestionID,
				Answer:     a.Answer,
				Notes:      a.Notes,
			})
		}
	}
	return rec
}

// RiskRecord is the decoded IT risk questionnaire.
type RiskRecord struct {
	Phase            types.AssessmentPhase
	OverallRiskScore float64
	Answers          []RiskAnswer
	CompletedAt      *time.Time
}

// RiskAnswer is one finalized risk questionnaire answer.
type RiskAnswer struct {
	QuestionID string
	Answer     string
	Likelihood types.LikelihoodLevel
	Impact     types.ImpactLevel
	Notes      string
}

type riskAnswerJSON struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Likelihood string `json:"likelihood"`
	Impact     string `json:"impact"`
	Notes      string `json:"notes"`
}

type riskRecordJSON struct {
	Responses map[string]json.RawMessage `json:"responses"`
	Report    *struct {
		OverallRiskScore float64 `json:"overallRiskScore"`
		Results          []struct {
			Responses []riskAnswerJSON `json:"responses"`
		} `json:"results"`
		CompletedAt json.RawMessage `json:"completedAt"`
	} `json:"report"`
}

// DecodeRiskRecord decodes the stored IT risk record.
func DecodeRiskRecord(raw []byte) *RiskRecord {
	var doc riskRecordJSON
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return &RiskRecord{Phase: types.PhaseNotStarted}
	}

	if doc.Report == nil {
		if len(doc.Responses) > 0 {
			return &RiskRecord{Phase: types.PhaseInProgress}
		}
		return &RiskRecord{Phase: types.PhaseNotStarted}
	}

	rec := &RiskRecord{
		Phase:            types.PhaseCompleted,
		OverallRiskScore: doc.Report.OverallRiskScore,
		CompletedAt:      parseTimestamp(doc.Report.CompletedAt),
	}
	for _, result := range doc.Report.Results {
		for _, a := range result.Responses {
			rec.Answers = append(rec.Answers, RiskAnswer{
				QuestionID: a.QuestionID,
				Answer:     a.Answer,
				Likelihood: types.LikelihoodLevel(a.Likelihood),
				Impact:     types.ImpactLevel(a.Impact),
				Notes:      a.Notes,
			})
		}
	}
	return rec
}

// ScanRecord is the decoded vulnerability scan import.
type ScanRecord struct {
	Phase             types.AssessmentPhase
	Findings          []ScanFinding
	SeverityBreakdown map[types.Severity]int
	CompletedAt       *time.Time
}

// ScanFinding is one imported scanner finding with normalized severity.
type ScanFinding struct {
	ID          string
	Severity    types.Severity
	Title       string
	Description string
	Remediation string
}

type scanFindingJSON struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Remediation string `json:"remediation"`
}

type scanRecordJSON struct {
	Scans []struct {
		Findings []scanFindingJSON `json:"findings"`
	} `json:"scans"`
	SeverityBreakdown *struct {
		Critical int `json:"critical"`
		High     int `json:"high"`
		Medium   int `json:"medium"`
		Low      int `json:"low"`
		Info     int `json:"info"`
	} `json:"severityBreakdown"`
	CompletedAt json.RawMessage `json:"completedAt"`
}

// DecodeScanRecord decodes the stored vulnerability scan record.
func DecodeScanRecord(raw []byte) *ScanRecord {
	var doc scanRecordJSON
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return &ScanRecord{Phase: types.PhaseNotStarted}
	}

	completedAt := parseTimestamp(doc.CompletedAt)
	if doc.SeverityBreakdown == nil && completedAt == nil {
		if len(doc.Scans) > 0 {
			return &ScanRecord{Phase: types.PhaseInProgress}
		}
		return &ScanRecord{Phase: types.PhaseNotStarted}
	}

	rec := &ScanRecord{
		Phase:       types.PhaseCompleted,
		CompletedAt: completedAt,
	}
	for _, scan := range doc.Scans {
		for _, f := range scan.Findings {
			rec.Findings = append(rec.Findings, ScanFinding{
				ID:          f.ID,
				Severity:    types.NormalizeSeverity(f.Severity),
				Title:       f.Title,
				Description: f.Description,
				Remediation: f.Remediation,
			})
		}
	}
	if doc.SeverityBreakdown != nil {
		// Negative counts in a malformed import would turn deductions
		// into credit above 100; clamp them to zero.
		rec.SeverityBreakdown = map[types.Severity]int{
			types.SeverityCritical: max(0, doc.SeverityBreakdown.Critical),
			types.SeverityHigh:     max(0, doc.SeverityBreakdown.High),
			types.SeverityMedium:   max(0, doc.SeverityBreakdown.Medium),
			types.SeverityLow:      max(0, doc.SeverityBreakdown.Low),
			types.SeverityInfo:     max(0, doc.SeverityBreakdown.Info),
		}
	} else {
		// Breakdown omitted by the importer; reconstruct from findings.
		rec.SeverityBreakdown = map[types.Severity]int{}
		for _, f := range rec.Findings {
			rec.SeverityBreakdown[f.Severity]++
		}
	}
	return rec
}

// parseTimestamp accepts the two timestamp encodings seen in stored
// records, RFC3339 strings and epoch milliseconds.
func parseTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return &ts
		}
		return nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		ts := time.UnixMilli(int64(ms)).UTC()
		return &ts
	}

	return nil
}
