package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tpakis/link-ops-sub001/internal/favorites"
	"github.com/tpakis/link-ops-sub001/internal/notify"
)

// RouterConfig carries the collaborators and limits for the HTTP surface.
// Notifier and Favorites may be nil; their endpoints degrade gracefully.
type RouterConfig struct {
	Engine         Diagnoser
	Devices        DeviceLister
	Validator      TrustValidator
	Favorites      *favorites.Store
	Notifier       *notify.Client
	MaxBodySize    int64
	RequestTimeout time.Duration
}

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		engine:      cfg.Engine,
		devices:     cfg.Devices,
		validator:   cfg.Validator,
		favorites:   cfg.Favorites,
		notifier:    cfg.Notifier,
		maxBodySize: cfg.MaxBodySize,
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Heartbeat("/ping"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/devices", h.handleDevices)
		r.Post("/diagnose", h.handleDiagnose)
		r.Post("/reverify", h.handleReverify)
		r.Post("/assetlinks/validate", h.handleAssetLinksValidate)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.handleFavoritesList)
			r.Post("/", h.handleFavoritesAdd)
			r.Delete("/", h.handleFavoritesRemove)
		})
	})

	return r
}
