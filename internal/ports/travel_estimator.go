package ports

import (
	"context"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Distance and travel duration between two points.
type TravelResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for estimating travel between two coordinates. Implementations
// may be local arithmetic or remote calls; the core does not care.
type TravelEstimator interface {
	// Return travel distance and estimated duration between two points.
	Travel(ctx context.Context, from, to domain.Coordinates) (TravelResult, error)
}

// Optional extension of TravelEstimator that computes a full matrix in one
// pass. Preferred by the planner to reduce external API calls.
type TravelMatrixEstimator interface {
	TravelEstimator
	// Return the NxN travel results for all ordered point pairs.
	TravelMatrix(ctx context.Context, points []domain.Coordinates) ([][]TravelResult, error)
}
