// Package orgcache wraps a repository with an organization-scoped
// read-through cache for assessment records. Writes land in the cache
// synchronously and are flushed to the backend through a bounded queue
// drained by a single background goroutine, so per-key write ordering is
// preserved. The cache is an explicit struct owned by its creator; there
// is no package-level state.
package orgcache

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/utils/errutil"
)

// DefaultQueueSize bounds the pending write queue. Enqueueing blocks when
// the queue is full, which backpressures writers instead of dropping or
// reordering flushes.
const DefaultQueueSize = 64

type recordKey struct {
	org  types.OrgID
	kind types.SourceKind
}

type writeOp struct {
	org  types.OrgID
	kind types.SourceKind
	raw  []byte
}

// Cache is a repository decorator. Only assessment records are cached;
// history and department access pass through untouched because their
// read-modify-write sequences must observe backend state.
type Cache struct {
	backend interfaces.Repository

	mu        sync.RWMutex
	records   map[recordKey][]byte
	activeOrg types.OrgID
	closed    bool

	queue chan writeOp
	wg    sync.WaitGroup
}

var _ interfaces.Repository = &Cache{}

type Option func(*Cache)

// WithQueueSize overrides the pending write queue capacity.
func WithQueueSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.queue = make(chan writeOp, n)
		}
	}
}

// New creates a cache over the given backend and starts its flush
// goroutine. The caller must Close the cache to flush pending writes.
func New(backend interfaces.Repository, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		records: make(map[recordKey][]byte),
		queue:   make(chan writeOp, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.drain()

	return c
}

// drain is the single flush loop; being the only consumer of the queue
// it serializes backend writes in enqueue order.
func (c *Cache) drain() {
	defer c.wg.Done()
	ctx := context.Background()
	for op := range c.queue {
		if err := c.backend.Assessment().Put(ctx, op.org, op.kind, op.raw); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err,
				"assessment record flush dropped",
				goerr.V("org", op.org), goerr.V("kind", op.kind)),
				"failed to flush assessment record")
		}
	}
}

// Activate marks an organization as active and hydrates its assessment
// records from the backend into the cache.
func (c *Cache) Activate(ctx context.Context, org types.OrgID) error {
	kinds, err := c.backend.Assessment().List(ctx, org)
	if err != nil {
		return goerr.Wrap(err, "failed to list assessment records for hydration", goerr.V("org", org))
	}

	hydrated := make(map[recordKey][]byte, len(kinds))
	for _, kind := range kinds {
		raw, err := c.backend.Assessment().Get(ctx, org, kind)
		if err != nil {
			return goerr.Wrap(err, "failed to hydrate assessment record",
				goerr.V("org", org), goerr.V("kind", kind))
		}
		hydrated[recordKey{org: org, kind: kind}] = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeOrg = org
	for k, v := range hydrated {
		c.records[k] = v
	}
	return nil
}

// ActiveOrg returns the most recently activated organization.
func (c *Cache) ActiveOrg() types.OrgID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeOrg
}

func (c *Cache) Assessment() interfaces.AssessmentRepository {
	return &cachedAssessments{cache: c}
}

func (c *Cache) History() interfaces.HistoryRepository {
	return c.backend.History()
}

func (c *Cache) Department() interfaces.DepartmentRepository {
	return c.backend.Department()
}

// Close stops accepting writes, waits for the queue to flush, and closes
// the backend.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.queue)
	c.wg.Wait()
	return c.backend.Close()
}

type cachedAssessments struct {
	cache *Cache
}

func (a *cachedAssessments) Put(ctx context.Context, org types.OrgID, kind types.SourceKind, raw []byte) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	stored := make([]byte, len(raw))
	copy(stored, raw)

	c := a.cache

	// The lock is held across the enqueue: the map write and the queue
	// must take effect in the same order for every key, and Close must
	// not close the queue underneath a Put blocked on a full queue. The
	// drain loop never takes the lock, so a full queue backpressures
	// writers here without deadlocking against the flush.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return goerr.New("cache is closed", goerr.V("org", org), goerr.V("kind", kind))
	}
	c.records[recordKey{org: org, kind: kind}] = stored
	c.queue <- writeOp{org: org, kind: kind, raw: stored}
	return nil
}

func (a *cachedAssessments) Get(ctx context.Context, org types.OrgID, kind types.SourceKind) ([]byte, error) {
	c := a.cache

	c.mu.RLock()
	raw, hit := c.records[recordKey{org: org, kind: kind}]
	c.mu.RUnlock()
	if hit {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}

	raw, err := c.backend.Assessment().Get(ctx, org, kind)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.records[recordKey{org: org, kind: kind}] = raw
	c.mu.Unlock()

	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (a *cachedAssessments) List(ctx context.Context, org types.OrgID) ([]types.SourceKind, error) {
	c := a.cache

	cached := map[types.SourceKind]bool{}
	c.mu.RLock()
	for k := range c.records {
		if k.org == org {
			cached[k.kind] = true
		}
	}
	c.mu.RUnlock()

	backendKinds, err := c.backend.Assessment().List(ctx, org)
	if err != nil {
		return nil, err
	}
	for _, kind := range backendKinds {
		cached[kind] = true
	}

	var kinds []types.SourceKind
	for _, kind := range types.SourceKinds() {
		if cached[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
