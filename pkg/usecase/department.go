package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// DepartmentUseCase manages the organization's department tree.
type DepartmentUseCase struct {
	repo interfaces.Repository
}

func NewDepartmentUseCase(repo interfaces.Repository) *DepartmentUseCase {
	return &DepartmentUseCase{repo: repo}
}

func (uc *DepartmentUseCase) Create(ctx context.Context, org types.OrgID, name string, parentID *int64) (*model.Department, error) {
	if name == "" {
		return nil, goerr.New("department name is required")
	}

	if parentID != nil {
		if _, err := uc.repo.Department().Get(ctx, org, *parentID); err != nil {
			return nil, goerr.Wrap(err, "parent department not found", goerr.V("parent_id", *parentID))
		}
	}

	return uc.repo.Department().Create(ctx, org, &model.Department{
		Name:     name,
		ParentID: parentID,
	})
}

func (uc *DepartmentUseCase) Get(ctx context.Context, org types.OrgID, id int64) (*model.Department, error) {
	return uc.repo.Department().Get(ctx, org, id)
}

func (uc *DepartmentUseCase) List(ctx context.Context, org types.OrgID) ([]*model.Department, error) {
	return uc.repo.Department().List(ctx, org)
}

// Move reassigns a department's parent. Moving under one of the
// department's own descendants would loop the tree, so the whole tree is
// validated with the proposed parent applied before anything is written.
func (uc *DepartmentUseCase) Move(ctx context.Context, org types.OrgID, id int64, newParentID *int64) (*model.Department, error) {
	dept, err := uc.repo.Department().Get(ctx, org, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, goerr.New("department cannot be its own parent", goerr.V("id", id))
		}
		if _, err := uc.repo.Department().Get(ctx, org, *newParentID); err != nil {
			return nil, goerr.Wrap(err, "parent department not found", goerr.V("parent_id", *newParentID))
		}
	}

	all, err := uc.repo.Department().List(ctx, org)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load department tree")
	}
	for _, d := range all {
		if d.ID == id {
			d.ParentID = newParentID
		}
	}
	if err := model.ValidateDepartmentTree(all); err != nil {
		return nil, goerr.Wrap(err, "move rejected", goerr.V("id", id))
	}

	dept.ParentID = newParentID
	return uc.repo.Department().Update(ctx, org, dept)
}

func (uc *DepartmentUseCase) Rename(ctx context.Context, org types.OrgID, id int64, name string) (*model.Department, error) {
	if name == "" {
		return nil, goerr.New("department name is required")
	}

	dept, err := uc.repo.Department().Get(ctx, org, id)
	if err != nil {
		return nil, err
	}

	dept.Name = name
	return uc.repo.Department().Update(ctx, org, dept)
}

// Delete removes a department. Children are reparented to the deleted
// department's own parent so the tree stays connected.
func (uc *DepartmentUseCase) Delete(ctx context.Context, org types.OrgID, id int64) error {
	dept, err := uc.repo.Department().Get(ctx, org, id)
	if err != nil {
		return err
	}

	all, err := uc.repo.Department().List(ctx, org)
	if err != nil {
		return goerr.Wrap(err, "failed to load department tree")
	}
	for _, d := range all {
		if d.ParentID != nil && *d.ParentID == id {
			d.ParentID = dept.ParentID
			if _, err := uc.repo.Department().Update(ctx, org, d); err != nil {
				return goerr.Wrap(err, "failed to reparent child department",
					goerr.V("child_id", d.ID))
			}
		}
	}

	return uc.repo.Department().Delete(ctx, org, id)
}
