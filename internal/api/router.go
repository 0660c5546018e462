package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/menusitemap/internal/siteservice"
	"github.com/starford/menusitemap/internal/sse"
)

// RouterConfig configures the admin API.
type RouterConfig struct {
	AuthEnabled bool
	Token       string
	// BaseURL is the configured site root; empty derives it per request.
	BaseURL string
}

// NewRouter creates a chi router with all admin API routes mounted. events,
// if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *siteservice.Service, cfg RouterConfig, events *sse.Broker) chi.Router {
	h := NewHandler(svc, cfg.BaseURL, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// Generation.
	r.Get("/entries", h.Entries)
	r.Get("/navigation", h.Navigation)
	r.Get("/content/{id}", h.Content)

	// Snapshots.
	r.Get("/snapshots", h.ListSnapshots)
	r.Put("/snapshots/*", h.PutSnapshot)
	r.Delete("/snapshots/*", h.DeleteSnapshot)
	r.Post("/sync", h.Sync)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
