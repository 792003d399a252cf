package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Department is one node of the organization's department tree.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateDepartmentTree checks that the parent relation over the given
// departments forms a forest. It walks each node's ancestry; revisiting a
// node on the same walk means the parent chain loops.
func ValidateDepartmentTree(departments []*Department) error {
	parents := make(map[int64]int64, len(departments))
	for _, d := range departments {
		if d.ParentID != nil {
			parents[d.ID] = *d.ParentID
		}
	}

	for _, d := range departments {
		seen := map[int64]bool{d.ID: true}
		current := d.ID
		for {
			parent, ok := parents[current]
			if !ok {
				break
			}
			if seen[parent] {
				return goerr.New("department hierarchy contains a cycle",
					goerr.V("department_id", d.ID), goerr.V("via", parent))
			}
			seen[parent] = true
			current = parent
		}
	}

	return nil
}
