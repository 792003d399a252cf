package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type historyRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newHistoryRepository(client *firestore.Client) *historyRepository {
	return &historyRepository{client: client}
}

func (r *historyRepository) collection(org types.OrgID) *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "orgs")).
		Doc(org.String()).
		Collection("posture_history")
}

func (r *historyRepository) Upsert(ctx context.Context, org types.OrgID, entry model.HistoryEntry) error {
	// The date is the document ID, so a same-day write replaces instead
	// of appending.
	if _, err := r.collection(org).Doc(entry.Date).Set(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to upsert history entry",
			goerr.V("org", org), goerr.V("date", entry.Date))
	}
	return nil
}

func (r *historyRepository) List(ctx context.Context, org types.OrgID) ([]model.HistoryEntry, error) {
	iter := r.collection(org).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var entries []model.HistoryEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list history entries", goerr.V("org", org))
		}

		var entry model.HistoryEntry
		if err := snap.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode history entry",
				goerr.V("org", org), goerr.V("doc", snap.Ref.ID))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *historyRepository) DeleteBefore(ctx context.Context, org types.OrgID, date string) error {
	iter := r.collection(org).Where("date", "<", date).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to query expired history entries", goerr.V("org", org))
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete expired history entry",
				goerr.V("org", org), goerr.V("doc", snap.Ref.ID))
		}
	}
	return nil
}
