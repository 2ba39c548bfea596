package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pharmalink/pharmalink/internal/auth"
	"github.com/pharmalink/pharmalink/internal/observability"
	reportinghttp "github.com/pharmalink/pharmalink/internal/reporting/http"
	"github.com/pharmalink/pharmalink/internal/submission"
	"github.com/pharmalink/pharmalink/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	DashboardHandler  *reportinghttp.Handler
	SubmissionHandler *submission.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with PharmaLink defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AuthHandler != nil {
		params.AuthHandler.Routes(r)
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthService != nil {
			r.Use(auth.RequireToken(params.AuthService, params.Logger))
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.Routes(r)
		}
		if params.SubmissionHandler != nil {
			params.SubmissionHandler.Routes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
