package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/domain/interfaces"
	"github.com/phisec-lab/panoptes/pkg/domain/types"
	"github.com/phisec-lab/panoptes/pkg/service/report"
	"github.com/phisec-lab/panoptes/pkg/utils/async"
	"github.com/phisec-lab/panoptes/pkg/utils/errutil"
	"github.com/phisec-lab/panoptes/pkg/utils/safe"
)

func orgFromRequest(r *http.Request) (types.OrgID, error) {
	org := types.OrgID(chi.URLParam(r, "org"))
	if err := org.Validate(); err != nil {
		return "", err
	}
	return org, nil
}

func (s *Server) putAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}
	kind := types.SourceKind(chi.URLParam(r, "kind"))
	if err := kind.Validate(); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRecordSize+1))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	if len(raw) > maxRecordSize {
		errutil.HandleHTTP(ctx, w, goerr.New("assessment record too large"), http.StatusRequestEntityTooLarge)
		return
	}

	if err := s.uc.Assessment.Submit(ctx, org, kind, raw); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"org":  org.String(),
		"kind": kind.String(),
	})
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	statuses, err := s.uc.Assessment.List(ctx, org)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"assessments": statuses})
}

// getPosture computes the snapshot synchronously and hands the history
// write, alerting, and archiving to a background dispatch so the
// response never waits on side effects.
func (s *Server) getPosture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	posture, err := s.uc.Posture.Compute(ctx, org)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return s.uc.Posture.Finalize(ctx, org, posture)
	})

	writeJSON(w, r, http.StatusOK, posture)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	history, err := s.uc.Posture.History(ctx, org)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	posture, err := s.uc.Posture.Compute(ctx, org)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	md, err := report.Markdown(org, posture)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, []byte(md))
}

type departmentRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

func (s *Server) createDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	var req departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	dept, err := s.uc.Department.Create(ctx, org, req.Name, req.ParentID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, departmentStatus(err))
		return
	}

	writeJSON(w, r, http.StatusCreated, dept)
}

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := orgFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	depts, err := s.uc.Department.List(ctx, org)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"departments": depts})
}

func (s *Server) getDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, id, err := departmentFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	dept, err := s.uc.Department.Get(ctx, org, id)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, departmentStatus(err))
		return
	}

	writeJSON(w, r, http.StatusOK, dept)
}

// updateDepartment renames the department, moves it under a new parent,
// or both, depending on which fields the request carries.
func (s *Server) updateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, id, err := departmentFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	var req struct {
		Name     *string `json:"name"`
		ParentID *int64  `json:"parent_id"`
		Move     bool    `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	dept, err := s.uc.Department.Get(ctx, org, id)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, departmentStatus(err))
		return
	}

	if req.Name != nil {
		if dept, err = s.uc.Department.Rename(ctx, org, id, *req.Name); err != nil {
			errutil.HandleHTTP(ctx, w, err, departmentStatus(err))
			return
		}
	}
	if req.Move {
		if dept, err = s.uc.Department.Move(ctx, org, id, req.ParentID); err != nil {
			errutil.HandleHTTP(ctx, w, err, departmentStatus(err))
			return
		}
	}

	writeJSON(w, r, http.StatusOK, dept)
}

func (s *Server) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, id, err := departmentFromRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	if err := s.uc.Department.Delete(ctx, org, id); err != nil {
		errutil.HandleHTTP(ctx, w, err, departmentStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func departmentFromRequest(r *http.Request) (types.OrgID, int64, error) {
	org, err := orgFromRequest(r)
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return "", 0, goerr.Wrap(err, "invalid department ID")
	}
	return org, id, nil
}

func departmentStatus(err error) int {
	if errors.Is(err, interfaces.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
