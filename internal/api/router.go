package api

import (
	"log/slog"
	"net/http"

	"github.com/bcnelson/pairstore/internal/api/handler"
	"github.com/bcnelson/pairstore/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(store handler.PairService, apiKey string, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(log))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes (auth when configured, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(apiKey, log))

		pairHandler := handler.NewPairHandler(store, log)
		r.Get("/pairs", pairHandler.List)
		r.Post("/pairs", pairHandler.Create)
		r.Delete("/pairs/{key}", pairHandler.Delete)

		r.Get("/domains/{domain}", pairHandler.LookupByDomain)
		r.Get("/ips/{ip}", pairHandler.LookupByIP)
		r.Get("/validate/{ip}", pairHandler.Validate)

		r.Get("/revisions", pairHandler.Revisions)
	})

	return r
}
