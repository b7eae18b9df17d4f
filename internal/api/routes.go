package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the Chi router
func NewRouter(h *Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recovery(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/search", h.Search)
		r.Get("/filters/options", h.FilterOptions)
		r.Get("/listings/{kind}/{id}", h.GetListing)
		r.Get("/listings/{kind}/{id}/bookings", h.ListBookings)
		r.Get("/wishlist", h.GetWishlist)
		r.Post("/wishlist/toggle", h.ToggleWishlist)
		r.Post("/refresh", h.TriggerRefresh)
	})

	return r
}
