package interfaces

import (
	"context"

	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// HistoryRepository persists the rolling posture history log.
type HistoryRepository interface {
	// Upsert stores the entry for its date, replacing any existing entry
	// for the same date rather than duplicating.
	Upsert(ctx context.Context, org types.OrgID, entry model.HistoryEntry) error

	// List returns all entries sorted ascending by date.
	List(ctx context.Context, org types.OrgID) ([]model.HistoryEntry, error)

	// DeleteBefore removes all entries with a date strictly before the
	// given YYYY-MM-DD date.
	DeleteBefore(ctx context.Context, org types.OrgID, date string) error
}
