package interfaces

import (
	"context"

	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// DepartmentRepository stores the organization's department tree.
type DepartmentRepository interface {
	// Create creates a new department with auto-generated ID.
	Create(ctx context.Context, org types.OrgID, dept *model.Department) (*model.Department, error)

	// Get retrieves a department by ID.
	Get(ctx context.Context, org types.OrgID, id int64) (*model.Department, error)

	// List retrieves all departments.
	List(ctx context.Context, org types.OrgID) ([]*model.Department, error)

	// Update updates an existing department.
	Update(ctx context.Context, org types.OrgID, dept *model.Department) (*model.Department, error)

	// Delete deletes a department by ID.
	Delete(ctx context.Context, org types.OrgID, id int64) error
}
