package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

type historyRepository struct {
	mu sync.RWMutex
	// entries maps org -> date -> entry; the date key enforces the
	// one-entry-per-day invariant.
	entries map[types.OrgID]map[string]model.HistoryEntry
}

func newHistoryRepository() *historyRepository {
	return &historyRepository{
		entries: make(map[types.OrgID]map[string]model.HistoryEntry),
	}
}

func (r *historyRepository) Upsert(ctx context.Context, org types.OrgID, entry model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byDate, exists := r.entries[org]
	if !exists {
		byDate = make(map[string]model.HistoryEntry)
		r.entries[org] = byDate
	}
	byDate[entry.Date] = entry
	return nil
}

func (r *historyRepository) List(ctx context.Context, org types.OrgID) ([]model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byDate := r.entries[org]
	entries := make([]model.HistoryEntry, 0, len(byDate))
	for _, entry := range byDate {
		entries = append(entries, entry)
	}

	// YYYY-MM-DD dates sort lexicographically.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	return entries, nil
}

func (r *historyRepository) DeleteBefore(ctx context.Context, org types.OrgID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for d := range r.entries[org] {
		if d < date {
			delete(r.entries[org], d)
		}
	}
	return nil
}
