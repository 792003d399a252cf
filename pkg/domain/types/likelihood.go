package types

import "strings"

// LikelihoodLevel is the answer scale for risk questionnaire likelihood.
type LikelihoodLevel string

// ImpactLevel is the answer scale for risk questionnaire impact.
type ImpactLevel string

const (
	LikelihoodVeryLow  LikelihoodLevel = "very-low"
	LikelihoodLow      LikelihoodLevel = "low"
	LikelihoodMedium   LikelihoodLevel = "medium"
	LikelihoodHigh     LikelihoodLevel = "high"
	LikelihoodVeryHigh LikelihoodLevel = "very-high"

	ImpactVeryLow  ImpactLevel = "very-low"
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

// Score maps the likelihood level onto the 1-5 scale. Unrecognized values
// score 1 so malformed answers cannot inflate a risk.
func (l LikelihoodLevel) Score() int {
	return levelScore(string(l))
}

// Score maps the impact level onto the 1-5 scale. Unrecognized values
// score 1 so malformed answers cannot inflate a risk.
func (i ImpactLevel) Score() int {
	return levelScore(string(i))
}

func levelScore(raw string) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "very-high", "critical":
		return 5
	case "high":
		return 4
	case "medium", "moderate":
		return 3
	case "low":
		return 2
	default:
		return 1
	}
}
