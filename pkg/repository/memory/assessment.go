package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

type assessmentKey struct {
	org  types.OrgID
	kind types.SourceKind
}

type assessmentRepository struct {
	mu      sync.RWMutex
	records map[assessmentKey][]byte
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		records: make(map[assessmentKey][]byte),
	}
}

func (r *assessmentRepository) Put(ctx context.Context, org types.OrgID, kind types.SourceKind, raw []byte) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(raw))
	copy(stored, raw)
	r.records[assessmentKey{org: org, kind: kind}] = stored
	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, org types.OrgID, kind types.SourceKind) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, exists := r.records[assessmentKey{org: org, kind: kind}]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "assessment record not found",
			goerr.V("org", org), goerr.V("kind", kind))
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (r *assessmentRepository) List(ctx context.Context, org types.OrgID) ([]types.SourceKind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var kinds []types.SourceKind
	for _, kind := range types.SourceKinds() {
		if _, exists := r.records[assessmentKey{org: org, kind: kind}]; exists {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
