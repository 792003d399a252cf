package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type departmentDocument struct {
	ID        int64     `firestore:"id"`
	Name      string    `firestore:"name"`
	ParentID  *int64    `firestore:"parent_id"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type departmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDepartmentRepository(client *firestore.Client) *departmentRepository {
	return &departmentRepository{client: client}
}

func (r *departmentRepository) collection(org types.OrgID) *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "orgs")).
		Doc(org.String()).
		Collection("departments")
}

func (r *departmentRepository) counterDoc(org types.OrgID) *firestore.DocumentRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "orgs")).
		Doc(org.String()).
		Collection("counters").
		Doc("department_counter")
}

func (r *departmentRepository) nextID(ctx context.Context, org types.OrgID) (int64, error) {
	counterRef := r.counterDoc(org)

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		nextID = currentValue.(int64) + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to allocate department ID", goerr.V("org", org))
	}

	return nextID, nil
}

func toDepartment(doc *departmentDocument) *model.Department {
	return &model.Department{
		ID:        doc.ID,
		Name:      doc.Name,
		ParentID:  doc.ParentID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (r *departmentRepository) Create(ctx context.Context, org types.OrgID, dept *model.Department) (*model.Department, error) {
	id, err := r.nextID(ctx, org)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &departmentDocument{
		ID:        id,
		Name:      dept.Name,
		ParentID:  dept.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	docRef := r.collection(org).Doc(fmt.Sprintf("%d", id))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create department",
			goerr.V("org", org), goerr.V("id", id))
	}

	return toDepartment(doc), nil
}

func (r *departmentRepository) Get(ctx context.Context, org types.OrgID, id int64) (*model.Department, error) {
	snap, err := r.collection(org).Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "department not found",
				goerr.V("org", org), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get department",
			goerr.V("org", org), goerr.V("id", id))
	}

	var doc departmentDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode department document",
			goerr.V("org", org), goerr.V("id", id))
	}
	return toDepartment(&doc), nil
}

func (r *departmentRepository) List(ctx context.Context, org types.OrgID) ([]*model.Department, error) {
	iter := r.collection(org).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var departments []*model.Department
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list departments", goerr.V("org", org))
		}

		var doc departmentDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode department document",
				goerr.V("org", org), goerr.V("doc", snap.Ref.ID))
		}
		departments = append(departments, toDepartment(&doc))
	}
	return departments, nil
}

func (r *departmentRepository) Update(ctx context.Context, org types.OrgID, dept *model.Department) (*model.Department, error) {
	docRef := r.collection(org).Doc(fmt.Sprintf("%d", dept.ID))

	snap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "department not found",
				goerr.V("org", org), goerr.V("id", dept.ID))
		}
		return nil, goerr.Wrap(err, "failed to get department",
			goerr.V("org", org), goerr.V("id", dept.ID))
	}

	var existing departmentDocument
	if err := snap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode department document",
			goerr.V("org", org), goerr.V("id", dept.ID))
	}

	doc := &departmentDocument{
		ID:        existing.ID,
		Name:      dept.Name,
		ParentID:  dept.ParentID,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update department",
			goerr.V("org", org), goerr.V("id", dept.ID))
	}
	return toDepartment(doc), nil
}

func (r *departmentRepository) Delete(ctx context.Context, org types.OrgID, id int64) error {
	docRef := r.collection(org).Doc(fmt.Sprintf("%d", id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "department not found",
				goerr.V("org", org), goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get department",
			goerr.V("org", org), goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete department",
			goerr.V("org", org), goerr.V("id", id))
	}
	return nil
}
