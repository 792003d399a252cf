// Package http exposes the posture engine over a JSON API.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/phisec-lab/panoptes/pkg/usecase"
	"github.com/phisec-lab/panoptes/pkg/utils/errutil"
	"github.com/phisec-lab/panoptes/pkg/utils/logging"
	"github.com/phisec-lab/panoptes/pkg/utils/safe"
)

// maxRecordSize caps uploaded assessment records. Records are small
// questionnaire/scan exports; anything larger is a client error.
const maxRecordSize = 4 << 20

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	verifier TokenVerifier
}

type Options func(*Server)

// WithAuth enables bearer token verification on the API routes.
func WithAuth(verifier TokenVerifier) Options {
	return func(s *Server) {
		s.verifier = verifier
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("usecases are required")
	}

	s := &Server{
		router: chi.NewRouter(),
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/orgs/{org}", func(r chi.Router) {
		if s.verifier != nil {
			r.Use(authMiddleware(s.verifier))
		}

		r.Put("/assessments/{kind}", s.putAssessment)
		r.Get("/assessments", s.listAssessments)

		r.Get("/posture", s.getPosture)
		r.Get("/posture/history", s.getHistory)
		r.Get("/posture/report", s.getReport)

		r.Route("/departments", func(r chi.Router) {
			r.Post("/", s.createDepartment)
			r.Get("/", s.listDepartments)
			r.Get("/{id}", s.getDepartment)
			r.Put("/{id}", s.updateDepartment)
			r.Delete("/{id}", s.deleteDepartment)
		})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests.
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
