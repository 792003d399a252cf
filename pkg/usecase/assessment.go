package usecase

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/model"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
)

// AssessmentUseCase manages the raw assessment records.
type AssessmentUseCase struct {
	repo    interfaces.Repository
	posture *PostureUseCase
}

func NewAssessmentUseCase(repo interfaces.Repository, posture *PostureUseCase) *AssessmentUseCase {
	return &AssessmentUseCase{repo: repo, posture: posture}
}

// Submit stores the raw record for one source. The payload must be
// valid JSON so the store never holds unparseable bytes, but no shape
// beyond that is enforced: the posture engine decodes defensively on
// read.
func (uc *AssessmentUseCase) Submit(ctx context.Context, org types.OrgID, kind types.SourceKind, raw []byte) error {
	if err := org.Validate(); err != nil {
		return goerr.Wrap(err, "invalid organization")
	}
	if err := kind.Validate(); err != nil {
		return err
	}
	if len(raw) == 0 {
		return goerr.New("empty assessment record", goerr.V("kind", kind))
	}
	if !json.Valid(raw) {
		return goerr.New("assessment record is not valid JSON", goerr.V("kind", kind))
	}

	if err := uc.repo.Assessment().Put(ctx, org, kind, raw); err != nil {
		return goerr.Wrap(err, "failed to store assessment record",
			goerr.V("org", org), goerr.V("kind", kind))
	}
	return nil
}

// List returns the status of every assessment source, stored or not.
// Sources without a record report as not-started.
func (uc *AssessmentUseCase) List(ctx context.Context, org types.OrgID) ([]model.AssessmentStatus, error) {
	posture, err := uc.posture.Compute(ctx, org)
	if err != nil {
		return nil, err
	}
	return posture.Assessments, nil
}
