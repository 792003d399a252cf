package usecase

import (
	"context"
	"time"

	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/model/config"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// Notifier delivers posture degradation alerts. A nil notifier disables
// alerting.
type Notifier interface {
	PostureDegraded(ctx context.Context, org types.OrgID, posture *model.Posture) error
}

// Archiver exports posture snapshots to long-term storage. A nil
// archiver disables exporting.
type Archiver interface {
	Export(ctx context.Context, org types.OrgID, posture *model.Posture) error
}

type UseCases struct {
	repo    interfaces.Repository
	scoring *config.ScoringConfig

	Posture    *PostureUseCase
	Assessment *AssessmentUseCase
	Department *DepartmentUseCase
}

type Option func(*UseCases)

func WithScoringConfig(cfg *config.ScoringConfig) Option {
	return func(uc *UseCases) {
		uc.scoring = cfg
	}
}

func WithNotifier(n Notifier) Option {
	return func(uc *UseCases) {
		uc.Posture.notifier = n
	}
}

func WithArchiver(a Archiver) Option {
	return func(uc *UseCases) {
		uc.Posture.archiver = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.Posture.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		scoring: config.DefaultScoringConfig(),
	}
	uc.Posture = NewPostureUseCase(repo, uc.scoring)
	uc.Assessment = NewAssessmentUseCase(repo, uc.Posture)
	uc.Department = NewDepartmentUseCase(repo)

	for _, opt := range opts {
		opt(uc)
	}

	// Options may have replaced the scoring config after the posture
	// usecase captured the default.
	uc.Posture.scoring = uc.scoring

	return uc
}
