package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assessmentDocument struct {
	Kind      string    `firestore:"kind"`
	Raw       []byte    `firestore:"raw"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{client: client}
}

func (r *assessmentRepository) collection(org types.OrgID) *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "orgs")).
		Doc(org.String()).
		Collection("assessments")
}

func (r *assessmentRepository) Put(ctx context.Context, org types.OrgID, kind types.SourceKind, raw []byte) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	doc := &assessmentDocument{
		Kind:      kind.String(),
		Raw:       raw,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := r.collection(org).Doc(kind.String()).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to store assessment record",
			goerr.V("org", org), goerr.V("kind", kind))
	}
	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, org types.OrgID, kind types.SourceKind) ([]byte, error) {
	snap, err := r.collection(org).Doc(kind.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "assessment record not found",
				goerr.V("org", org), goerr.V("kind", kind))
		}
		return nil, goerr.Wrap(err, "failed to get assessment record",
			goerr.V("org", org), goerr.V("kind", kind))
	}

	var doc assessmentDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode assessment document",
			goerr.V("org", org), goerr.V("kind", kind))
	}
	return doc.Raw, nil
}

func (r *assessmentRepository) List(ctx context.Context, org types.OrgID) ([]types.SourceKind, error) {
	iter := r.collection(org).Documents(ctx)
	defer iter.Stop()

	present := map[types.SourceKind]bool{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list assessment records", goerr.V("org", org))
		}
		present[types.SourceKind(snap.Ref.ID)] = true
	}

	var kinds []types.SourceKind
	for _, kind := range types.SourceKinds() {
		if present[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
