package services

import (
	"sort"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// SweepClusters partitions stops into at most maxDrivers clusters using a
// sweep ordering: stops are sorted by compass bearing from the depot, then
// walked in order, filling one cluster at a time until either the stop-count
// or the capacity limit would be violated.
//
// A sweep-based greedy partition gives geographically coherent, deterministic
// clusters in linear-plus-sort time. It does not attempt a true optimization.
// truckCapacity <= 0 means unconstrained. Stops that cannot be placed once
// all clusters are exhausted land in the unassigned list instead of failing
// the plan.
func SweepClusters(
	depot domain.Coordinates,
	stops []domain.Stop,
	maxDrivers int,
	maxStopsPerDriver int,
	truckCapacity float64,
) ([]domain.Cluster, []domain.Stop) {
	if len(stops) == 0 || maxDrivers < 1 || maxStopsPerDriver < 1 {
		return nil, append([]domain.Stop(nil), stops...)
	}

	ordered := append([]domain.Stop(nil), stops...)
	// Stable sort keeps equal-bearing stops in original input order, which
	// makes replanning identical input deterministic.
	sort.SliceStable(ordered, func(i, j int) bool {
		return domain.BearingDegrees(depot, ordered[i].Coords) < domain.BearingDegrees(depot, ordered[j].Coords)
	})

	clusters := make([]domain.Cluster, 0, maxDrivers)
	var unassigned []domain.Stop

	current := domain.Cluster{}
	for _, s := range ordered {
		// A stop whose demand alone exceeds capacity can never be placed;
		// report it without burning clusters on it.
		if truckCapacity > 0 && s.Gallons > truckCapacity {
			unassigned = append(unassigned, s)
			continue
		}

		if fitsCluster(current, s, maxStopsPerDriver, truckCapacity) {
			current.Stops = append(current.Stops, s)
			current.TotalGallons += s.Gallons
			continue
		}

		// Close the current cluster and open the next, if the fleet allows.
		if len(clusters)+1 >= maxDrivers {
			unassigned = append(unassigned, s)
			continue
		}
		clusters = append(clusters, current)
		current = domain.Cluster{
			Stops:        []domain.Stop{s},
			TotalGallons: s.Gallons,
		}
	}

	if len(current.Stops) > 0 {
		clusters = append(clusters, current)
	}

	return clusters, unassigned
}

func fitsCluster(c domain.Cluster, s domain.Stop, maxStops int, capacity float64) bool {
	if len(c.Stops) >= maxStops {
		return false
	}
	if capacity > 0 && c.TotalGallons+s.Gallons > capacity {
		return false
	}
	return true
}
