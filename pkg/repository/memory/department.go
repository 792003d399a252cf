package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

type departmentRepository struct {
	mu          sync.RWMutex
	departments map[types.OrgID]map[int64]*model.Department
	nextID      int64
}

func newDepartmentRepository() *departmentRepository {
	return &departmentRepository{
		departments: make(map[types.OrgID]map[int64]*model.Department),
		nextID:      1,
	}
}

func copyDepartment(d *model.Department) *model.Department {
	out := &model.Department{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.ParentID != nil {
		parent := *d.ParentID
		out.ParentID = &parent
	}
	return out
}

func (r *departmentRepository) Create(ctx context.Context, org types.OrgID, dept *model.Department) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID, exists := r.departments[org]
	if !exists {
		byID = make(map[int64]*model.Department)
		r.departments[org] = byID
	}

	now := time.Now().UTC()
	created := copyDepartment(dept)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	byID[created.ID] = created
	return copyDepartment(created), nil
}

func (r *departmentRepository) Get(ctx context.Context, org types.OrgID, id int64) (*model.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dept, exists := r.departments[org][id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "department not found",
			goerr.V("org", org), goerr.V("id", id))
	}
	return copyDepartment(dept), nil
}

func (r *departmentRepository) List(ctx context.Context, org types.OrgID) ([]*model.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byID := r.departments[org]
	departments := make([]*model.Department, 0, len(byID))
	for _, dept := range byID {
		departments = append(departments, copyDepartment(dept))
	}
	sort.Slice(departments, func(i, j int) bool {
		return departments[i].ID < departments[j].ID
	})
	return departments, nil
}

func (r *departmentRepository) Update(ctx context.Context, org types.OrgID, dept *model.Department) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.departments[org][dept.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "department not found",
			goerr.V("org", org), goerr.V("id", dept.ID))
	}

	updated := copyDepartment(dept)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.departments[org][dept.ID] = updated
	return copyDepartment(updated), nil
}

func (r *departmentRepository) Delete(ctx context.Context, org types.OrgID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.departments[org][id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "department not found",
			goerr.V("org", org), goerr.V("id", id))
	}
	delete(r.departments[org], id)
	return nil
}
