package distance

import (
	"context"
	"testing"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

func TestHaversineEstimatorTravel(t *testing.T) {
	est := NewHaversineEstimator()
	ctx := context.Background()

	phoenix := domain.Coordinates{Lat: 33.4484, Lon: -112.0740}
	tempe := domain.Coordinates{Lat: 33.4255, Lon: -111.9400}

	out, err := est.Travel(ctx, phoenix, tempe)
	if err != nil {
		t.Fatalf("Travel: %v", err)
	}
	if out.DistanceMeters <= 0 || out.DurationSeconds <= 0 {
		t.Fatalf("result = %+v, want positive distance and duration", out)
	}

	back, err := est.Travel(ctx, tempe, phoenix)
	if err != nil {
		t.Fatalf("Travel (reverse): %v", err)
	}
	if back != out {
		t.Errorf("great-circle estimates must be symmetric: %+v vs %+v", out, back)
	}

	self, err := est.Travel(ctx, phoenix, phoenix)
	if err != nil {
		t.Fatalf("Travel (self): %v", err)
	}
	if self != (ports.TravelResult{}) {
		t.Errorf("self travel = %+v, want zero", self)
	}
}

func TestHaversineEstimatorSpeedScalesDuration(t *testing.T) {
	ctx := context.Background()
	a := domain.Coordinates{Lat: 33.4484, Lon: -112.0740}
	b := domain.Coordinates{Lat: 33.4255, Lon: -111.9400}

	slow, _ := (&HaversineEstimator{SpeedKmh: 20}).Travel(ctx, a, b)
	fast, _ := (&HaversineEstimator{SpeedKmh: 80}).Travel(ctx, a, b)

	if slow.DistanceMeters != fast.DistanceMeters {
		t.Errorf("distance must not depend on speed: %d vs %d", slow.DistanceMeters, fast.DistanceMeters)
	}
	if slow.DurationSeconds <= fast.DurationSeconds {
		t.Errorf("slower speed must take longer: %d vs %d", slow.DurationSeconds, fast.DurationSeconds)
	}
}

func TestHaversineEstimatorMatrix(t *testing.T) {
	est := NewHaversineEstimator()
	points := []domain.Coordinates{
		{Lat: 33.4484, Lon: -112.0740},
		{Lat: 33.4255, Lon: -111.9400},
		{Lat: 33.5000, Lon: -112.1000},
	}

	m, err := est.TravelMatrix(context.Background(), points)
	if err != nil {
		t.Fatalf("TravelMatrix: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("rows = %d, want 3", len(m))
	}

	for i := range m {
		if len(m[i]) != 3 {
			t.Fatalf("row %d cols = %d, want 3", i, len(m[i]))
		}
		if m[i][i] != (ports.TravelResult{}) {
			t.Errorf("diagonal [%d][%d] = %+v, want zero", i, i, m[i][i])
		}
		for j := range m[i] {
			if i != j && m[i][j].DurationSeconds <= 0 {
				t.Errorf("m[%d][%d] = %+v, want positive duration", i, j, m[i][j])
			}
		}
	}
}
