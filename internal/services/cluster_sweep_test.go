package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

var sweepDepot = domain.Coordinates{Lat: 33.0, Lon: -112.0}

// fanStops spreads n stops on distinct bearings east of the depot so the
// sweep order matches the slice order.
func fanStops(n int, gallons float64) []domain.Stop {
	stops := make([]domain.Stop, n)
	for i := range stops {
		stops[i] = domain.Stop{
			ID:      i + 1,
			Coords:  domain.Coordinates{Lat: 33.2 - 0.01*float64(i), Lon: -111.9},
			Gallons: gallons,
		}
		stops[i].Location = domain.CoordsLocation(stops[i].Coords)
	}
	return stops
}

func countStops(clusters []domain.Cluster) int {
	n := 0
	for _, c := range clusters {
		n += len(c.Stops)
	}
	return n
}

func TestSweepClustersRespectsStopLimit(t *testing.T) {
	stops := fanStops(10, 0)

	clusters, unassigned := SweepClusters(sweepDepot, stops, 5, 4, 0)

	require.Len(t, clusters, 3)
	assert.Len(t, clusters[0].Stops, 4)
	assert.Len(t, clusters[1].Stops, 4)
	assert.Len(t, clusters[2].Stops, 2)
	assert.Empty(t, unassigned)
}

func TestSweepClustersFleetLimitOverflow(t *testing.T) {
	stops := fanStops(10, 0)

	clusters, unassigned := SweepClusters(sweepDepot, stops, 1, 7, 0)

	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Stops, 7)
	assert.Len(t, unassigned, 3)
	assert.Equal(t, len(stops), countStops(clusters)+len(unassigned))
}

func TestSweepClustersCapacitySplit(t *testing.T) {
	stops := fanStops(5, 500)

	clusters, unassigned := SweepClusters(sweepDepot, stops, 6, 7, 1000)

	require.Len(t, clusters, 3)
	assert.Empty(t, unassigned)
	for i, c := range clusters {
		assert.LessOrEqualf(t, c.TotalGallons, 1000.0, "cluster %d over capacity", i)
	}
	assert.Equal(t, 5, countStops(clusters))
}

func TestSweepClustersOversizedStopUnassigned(t *testing.T) {
	stops := fanStops(3, 400)
	stops[1].Gallons = 1500

	clusters, unassigned := SweepClusters(sweepDepot, stops, 5, 7, 1000)

	require.Len(t, unassigned, 1)
	assert.Equal(t, 2, unassigned[0].ID)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Stops, 2)
}

func TestSweepClustersZeroCapacityUnconstrained(t *testing.T) {
	stops := fanStops(4, 9000)

	clusters, unassigned := SweepClusters(sweepDepot, stops, 2, 10, 0)

	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Stops, 4)
	assert.Empty(t, unassigned)
}

func TestSweepClustersStopAccounting(t *testing.T) {
	cases := []struct {
		n, drivers, perDriver int
		capacity              float64
	}{
		{12, 3, 4, 0},
		{12, 2, 4, 0},
		{9, 4, 2, 800},
		{1, 1, 1, 0},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("n=%d d=%d s=%d", tc.n, tc.drivers, tc.perDriver), func(t *testing.T) {
			stops := fanStops(tc.n, 300)
			clusters, unassigned := SweepClusters(sweepDepot, stops, tc.drivers, tc.perDriver, tc.capacity)

			assert.LessOrEqual(t, len(clusters), tc.drivers)
			assert.Equal(t, tc.n, countStops(clusters)+len(unassigned))

			seen := make(map[int]bool)
			for _, c := range clusters {
				for _, s := range c.Stops {
					assert.Falsef(t, seen[s.ID], "stop %d assigned twice", s.ID)
					seen[s.ID] = true
				}
			}
		})
	}
}

func TestSweepClustersDeterministic(t *testing.T) {
	stops := fanStops(8, 250)
	// Equal bearings exercise the stable tie-break on input order.
	stops[3].Coords = stops[2].Coords
	stops[3].Location = stops[2].Location

	first, firstUn := SweepClusters(sweepDepot, stops, 3, 3, 1000)
	second, secondUn := SweepClusters(sweepDepot, stops, 3, 3, 1000)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Stops, second[i].Stops)
	}
	assert.Equal(t, firstUn, secondUn)
}
