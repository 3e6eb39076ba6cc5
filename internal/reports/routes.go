package reports

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the dashboard, report pages, exports, the record pages
// and the records API.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(30, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/reports/history", h.handleHistory)
	r.With(exportsOnly(limiter)).Get("/reports/{report}", h.handleReport)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/reports/{report}/email/send", h.handleEmailSend)
	})
	if h.records != nil {
		h.mountRecordPages(r)
		r.Route("/api", h.mountRecordsAPI)
	}
}

// exportsOnly applies limit to requests that render a file, leaving page views
// and JSON reads unthrottled.
func exportsOnly(limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			format := r.URL.Query().Get("format")
			if format == "" || format == formatJSON {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
