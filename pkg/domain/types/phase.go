package types

import "github.com/m-mizutani/goerr/v2"

// AssessmentPhase is the lifecycle state of one assessment source.
type AssessmentPhase string

const (
	PhaseNotStarted AssessmentPhase = "not-started"
	PhaseInProgress AssessmentPhase = "in-progress"
	PhaseCompleted  AssessmentPhase = "completed"
)

// Validate checks if the AssessmentPhase is valid.
func (p AssessmentPhase) Validate() error {
	switch p {
	case PhaseNotStarted, PhaseInProgress, PhaseCompleted:
		return nil
	default:
		return goerr.New("invalid assessment phase", goerr.V("phase", p))
	}
}

// String returns the string representation of AssessmentPhase.
func (p AssessmentPhase) String() string {
	return string(p)
}
