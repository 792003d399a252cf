package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// OrgID identifies a customer organization. All stored state is scoped by
// organization.
type OrgID string

// Validate checks if the OrgID is valid.
func (o OrgID) Validate() error {
	if o == "" {
		return goerr.New("organization ID cannot be empty")
	}
	if !idPattern.MatchString(string(o)) {
		return goerr.New("organization ID must be lowercase alphanumeric with hyphens", goerr.V("id", o))
	}
	return nil
}

// String returns the string representation of OrgID.
func (o OrgID) String() string {
	return string(o)
}

// SnapshotID identifies one computed posture snapshot.
type SnapshotID string

// String returns the string representation of SnapshotID.
func (s SnapshotID) String() string {
	return string(s)
}
