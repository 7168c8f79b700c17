// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// the verification service and encode; business rules stay below.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(ClientMetadata)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/verify", h.handleVerify)
		r.Post("/wallets", h.handleCreateWallet)
		r.Post("/wallets/{id}/plugins", h.handleAddPlugin)
	})
	return r
}
