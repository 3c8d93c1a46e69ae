// Package http wires the chi router and handlers for the analysis API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"finsight/internal/config"
)

// NewRouter assembles the API router.
func NewRouter(cfg *config.Config, service AnalysisServiceInterface, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TraceID)
	r.Use(RequestLogger(logger))
	if cfg.Security.RateLimit.Enabled {
		r.Use(RateLimit(cfg.Security.RateLimit))
	}
	if cfg.Security.EnableCORS {
		r.Use(CORS(cfg.Security.AllowedOrigins))
	}

	r.Get("/healthz", healthz)

	analysisHandler := NewAnalysisHandler(service, logger, cfg.Server.MaxUploadBytes)
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", healthz)
		r.Mount("/analysis", analysisHandler.Routes())
	})

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "healthy"})
}
