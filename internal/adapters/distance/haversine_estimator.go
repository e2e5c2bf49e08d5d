package distance

import (
	"context"
	"math"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

// Average road speed assumed when deriving durations from great-circle
// distance. Deliberately conservative for urban delivery driving.
const defaultSpeedKmh = 35.0

// HaversineEstimator is the synthetic fallback TravelEstimator: great-circle
// distance at a fixed average speed. It never fails and never touches the
// network, which keeps the service fully usable without a directions
// provider configured.
type HaversineEstimator struct {
	SpeedKmh float64
}

func NewHaversineEstimator() *HaversineEstimator {
	return &HaversineEstimator{SpeedKmh: defaultSpeedKmh}
}

func (e *HaversineEstimator) Travel(_ context.Context, from, to domain.Coordinates) (ports.TravelResult, error) {
	speed := e.SpeedKmh
	if speed <= 0 {
		speed = defaultSpeedKmh
	}

	meters := domain.HaversineMeters(from, to)
	seconds := meters / (speed * 1000 / 3600)

	return ports.TravelResult{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(seconds)),
	}, nil
}

func (e *HaversineEstimator) TravelMatrix(ctx context.Context, points []domain.Coordinates) ([][]ports.TravelResult, error) {
	m := make([][]ports.TravelResult, len(points))
	for i := range points {
		m[i] = make([]ports.TravelResult, len(points))
		for j := range points {
			if i == j {
				continue
			}
			r, err := e.Travel(ctx, points[i], points[j])
			if err != nil {
				return nil, err
			}
			m[i][j] = r
		}
	}
	return m, nil
}
