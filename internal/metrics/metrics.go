package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_plans_total",
		Help: "Planning requests by outcome.",
	}, []string{"outcome"})

	PlanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_plan_duration_seconds",
		Help:    "End-to-end planning call duration.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	InfeasibleRoutes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_infeasible_routes_total",
		Help: "Routes classified infeasible.",
	})

	ExcludedStops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_excluded_stops_total",
		Help: "Stops excluded before clustering (geocode failures).",
	})

	UnassignedStops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_unassigned_stops_total",
		Help: "Stops left unassigned by fleet limits.",
	})
)
