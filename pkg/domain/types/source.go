package types

import "github.com/m-mizutani/goerr/v2"

// SourceKind identifies one of the three assessment sources feeding the
// posture engine. The value doubles as the storage key for the raw record.
type SourceKind string

const (
	// SourceSRA is the HIPAA security risk assessment questionnaire.
	SourceSRA SourceKind = "sra"
	// SourceITRisk is the IT risk questionnaire.
	SourceITRisk SourceKind = "it-risk"
	// SourceVulnScan is the imported vulnerability scan.
	SourceVulnScan SourceKind = "vulnscan"
)

// SourceKinds returns all assessment sources in aggregation order.
func SourceKinds() []SourceKind {
	return []SourceKind{SourceSRA, SourceITRisk, SourceVulnScan}
}

// Validate checks if the SourceKind is one of the known sources.
func (k SourceKind) Validate() error {
	switch k {
	case SourceSRA, SourceITRisk, SourceVulnScan:
		return nil
	default:
		return goerr.New("unknown assessment source", goerr.V("kind", k))
	}
}

// String returns the string representation of SourceKind.
func (k SourceKind) String() string {
	return string(k)
}

// DisplayName returns the human readable name for the source.
func (k SourceKind) DisplayName() string {
	switch k {
	case SourceSRA:
		return "Security Risk Assessment"
	case SourceITRisk:
		return "IT Risk Questionnaire"
	case SourceVulnScan:
		return "Vulnerability Scan"
	default:
		return string(k)
	}
}
