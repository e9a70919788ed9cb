package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/playlistbridge/playlistbridge/internal/config"
)

// NewRouter builds the control-plane HTTP surface for the sync daemon:
// health checks, Prometheus metrics, and the §6 sync-trigger contract.
func NewRouter(handler *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Get("/healthz", handler.HealthLive)
	r.Get("/readyz", handler.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/syncs", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))

		r.Post("/{playlist}", handler.TriggerSync)
		r.Delete("/{playlist}", handler.CancelSync)
		r.Get("/{playlist}", handler.GetSyncProgress)
		r.Get("/{playlist}/preview", handler.GetSyncPreview)
	})

	r.Get("/library/comparison", handler.GetLibraryComparison)
	r.Get("/catalog/albums/completion", handler.GetAlbumCompletionStats)
	r.Post("/wishlist/dedupe", handler.DedupeWishlist)

	return r
}
