package types

import "github.com/m-mizutani/goerr/v2"

// Rating is the qualitative band for an overall posture score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingCritical  Rating = "Critical"
)

// Validate checks if the Rating is one of the known bands.
func (r Rating) Validate() error {
	switch r {
	case RatingExcellent, RatingGood, RatingFair, RatingPoor, RatingCritical:
		return nil
	default:
		return goerr.New("invalid rating", goerr.V("rating", r))
	}
}

// String returns the string representation of Rating.
func (r Rating) String() string {
	return string(r)
}

// Degraded reports whether the rating is in a band that warrants an alert.
func (r Rating) Degraded() bool {
	return r == RatingPoor || r == RatingCritical
}
