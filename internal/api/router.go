package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/loadlogic/fleet-route-planner/internal/api/handlers"
	"github.com/loadlogic/fleet-route-planner/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete adapters.
func NewRouter(planner *services.Planner, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(log))

	planHandler := &handlers.PlanHandler{Planner: planner, Log: log}

	r.Get("/health", handlers.Health)
	r.Post("/plans", planHandler.Plan)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
