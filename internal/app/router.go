package app

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/reports"
	"github.com/odyssey-erp/backoffice/jobs"
	"github.com/odyssey-erp/backoffice/report"
)

// RouterParams groups dependencies for building the HTTP router. Only
// ReportsHandler is required.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	ReportsHandler *reports.Handler
	JobHandler     *jobs.Handler
	PDFHandler     *report.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	params.ReportsHandler.MountRoutes(r)

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.PDFHandler != nil {
		r.Route("/pdf", params.PDFHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.Config != nil && params.Config.ExportDir != "" {
		if info, err := os.Stat(params.Config.ExportDir); err == nil && info.IsDir() {
			files := http.StripPrefix("/exports/", http.FileServer(http.Dir(params.Config.ExportDir)))
			r.Handle("/exports/*", downloadHandler(files))
		}
	}

	return r
}

// downloadHandler serves saved exports as attachments without caching.
func downloadHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Disposition", "attachment")
		next.ServeHTTP(w, r)
	})
}
