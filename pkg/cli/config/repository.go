package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/repository/firestore"
	"github.com/phisec-lab/panoptes/pkg/repository/memory"
	"github.com/phisec-lab/panoptes/pkg/repository/orgcache"
	"github.com/phisec-lab/panoptes/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration.
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	prefix     string
	cache      bool
}

func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore or memory)",
			Category:    "Repository",
			Value:       "firestore",
			Sources:     cli.EnvVars("PANOPTES_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("PANOPTES_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("PANOPTES_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names (for shared projects)",
			Category:    "Repository",
			Sources:     cli.EnvVars("PANOPTES_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.prefix,
		},
		&cli.BoolFlag{
			Name:        "repository-cache",
			Usage:       "Cache assessment records in memory with write-behind persistence",
			Category:    "Repository",
			Sources:     cli.EnvVars("PANOPTES_REPOSITORY_CACHE"),
			Destination: &r.cache,
		},
	}
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close() on the returned
// repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	var repo interfaces.Repository

	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.prefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.prefix))
		}
		fs, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.prefix,
		)
		repo = fs

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		repo = memory.New()

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}

	if r.cache {
		logging.Default().Info("Assessment record cache enabled")
		repo = orgcache.New(repo)
	}

	return repo, nil
}
