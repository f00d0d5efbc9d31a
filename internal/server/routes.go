package server

import (
	"net/http"
	"vct-survivor/internal/config"
	"vct-survivor/internal/middleware"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// NewRouter serves the RPC API under its service path plus /healthz and
// /metrics.
func NewRouter(srv *SurvivorServer, cfg *config.Config, gatherer prometheus.Gatherer, logger zerolog.Logger) http.Handler {
	path, handler := NewSurvivorHandler(srv, connect.WithInterceptors(AdminKeyInterceptor(cfg.AdminKey)))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(c.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID(logger))
		r.Mount(path, handler)
	})
	return r
}
