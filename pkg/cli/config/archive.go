package config

import (
	"context"

	"github.com/phisec-lab/panoptes/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Archive holds CLI flags for snapshot archiving.
type Archive struct {
	bucket string
}

func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for posture snapshot archives (disabled when empty)",
			Category:    "Archive",
			Sources:     cli.EnvVars("PANOPTES_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
	}
}

// Configure builds the GCS archiver, or nil when no bucket is set. The
// caller owns Close() on the returned archiver.
func (x *Archive) Configure(ctx context.Context) (*archive.GCSArchiver, error) {
	if x.bucket == "" {
		return nil, nil
	}
	return archive.NewGCS(ctx, x.bucket)
}
