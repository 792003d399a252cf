// Package archive exports posture snapshots to Cloud Storage for
// long-term retention beyond the rolling history window.
package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// GCSArchiver writes one JSON object per exported snapshot under
// postures/{org}/{date}-{snapshotID}.json.
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCSArchiver, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &GCSArchiver{
		client: client,
		bucket: bucket,
	}, nil
}

// Export uploads the snapshot.
func (a *GCSArchiver) Export(ctx context.Context, org types.OrgID, posture *model.Posture) error {
	data, err := json.MarshalIndent(posture, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal posture snapshot", goerr.V("org", org))
	}

	name := fmt.Sprintf("postures/%s/%s-%s.json",
		org, posture.GeneratedAt.Format(model.DateLayout), posture.SnapshotID)

	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write snapshot object",
			goerr.V("org", org), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize snapshot object",
			goerr.V("org", org), goerr.V("object", name))
	}
	return nil
}

// Close releases the storage client.
func (a *GCSArchiver) Close() error {
	if err := a.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage client")
	}
	return nil
}
