package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/phisec-lab/panoptes/pkg/repository/memory"
	"github.com/phisec-lab/panoptes/pkg/usecase"
)

func TestDepartmentCreateAndMove(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	root, err := uc.Department.Create(ctx, testOrg, "Clinical Operations", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, root.Name).Equal("Clinical Operations")
	gt.Value(t, root.ParentID).Nil()

	child, err := uc.Department.Create(ctx, testOrg, "Radiology", &root.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, *child.ParentID).Equal(root.ID)

	grandchild, err := uc.Department.Create(ctx, testOrg, "Imaging IT", &child.ID)
	gt.NoError(t, err).Required()

	t.Run("create rejects missing parent", func(t *testing.T) {
		missing := int64(9999)
		_, err := uc.Department.Create(ctx, testOrg, "Orphan", &missing)
		gt.Value(t, err).NotNil()
	})

	t.Run("move rejects self parent", func(t *testing.T) {
		_, err := uc.Department.Move(ctx, testOrg, child.ID, &child.ID)
		gt.Value(t, err).NotNil()
	})

	t.Run("move rejects cycle", func(t *testing.T) {
		// Moving the root under its own grandchild would close a loop.
		_, err := uc.Department.Move(ctx, testOrg, root.ID, &grandchild.ID)
		gt.Value(t, err).NotNil()
	})

	t.Run("move to new parent succeeds", func(t *testing.T) {
		moved, err := uc.Department.Move(ctx, testOrg, grandchild.ID, &root.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, *moved.ParentID).Equal(root.ID)
	})

	t.Run("move to top level succeeds", func(t *testing.T) {
		moved, err := uc.Department.Move(ctx, testOrg, child.ID, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, moved.ParentID).Nil()
	})
}

func TestDepartmentRename(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	dept, err := uc.Department.Create(ctx, testOrg, "Billling", nil)
	gt.NoError(t, err).Required()

	renamed, err := uc.Department.Rename(ctx, testOrg, dept.ID, "Billing")
	gt.NoError(t, err).Required()
	gt.Value(t, renamed.Name).Equal("Billing")

	_, err = uc.Department.Rename(ctx, testOrg, dept.ID, "")
	gt.Value(t, err).NotNil()
}

func TestDepartmentDeleteReparentsChildren(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	root, err := uc.Department.Create(ctx, testOrg, "Administration", nil)
	gt.NoError(t, err).Required()
	mid, err := uc.Department.Create(ctx, testOrg, "Compliance", &root.ID)
	gt.NoError(t, err).Required()
	leaf, err := uc.Department.Create(ctx, testOrg, "Privacy Office", &mid.ID)
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Department.Delete(ctx, testOrg, mid.ID)).Required()

	_, err = uc.Department.Get(ctx, testOrg, mid.ID)
	gt.Value(t, err).NotNil()

	// The orphaned child climbs to the deleted node's parent.
	reparented, err := uc.Department.Get(ctx, testOrg, leaf.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, *reparented.ParentID).Equal(root.ID)
}
