package interfaces

import (
	"context"

	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// AssessmentRepository stores the raw assessment records. Records are
// opaque bytes at this layer; the engine decodes them defensively on
// read, so a write can never be rejected for shape.
type AssessmentRepository interface {
	// Put stores the raw record for one source, replacing any previous
	// record.
	Put(ctx context.Context, org types.OrgID, kind types.SourceKind, raw []byte) error

	// Get retrieves the raw record for one source. Returns ErrNotFound
	// when the source has never been written.
	Get(ctx context.Context, org types.OrgID, kind types.SourceKind) ([]byte, error)

	// List returns the kinds that have a stored record.
	List(ctx context.Context, org types.OrgID) ([]types.SourceKind, error)
}
