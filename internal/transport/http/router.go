package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ardhi/internal/platform/metrics"
	"ardhi/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Handlers bundles the per-feature handlers the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Properties *PropertyHandler
	Documents  *DocumentHandler
	Transfers  *TransferHandler
	Activity   *ActivityHandler
	Admin      *AdminHandler
}

// NewRouter assembles the full middleware chain and route surface.
// Admin-only endpoints sit behind RequireAdmin in addition to the
// service-level policy checks.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	if m != nil {
		r.Use(middleware.Latency(m))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	h.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))

		h.Auth.RegisterAuthenticated(r)
		h.Properties.Register(r)
		h.Documents.Register(r)
		h.Transfers.Register(r)
		h.Activity.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logger))

			h.Properties.RegisterAdmin(r)
			h.Transfers.RegisterAdmin(r)
			h.Admin.Register(r)
		})
	})

	return r
}
