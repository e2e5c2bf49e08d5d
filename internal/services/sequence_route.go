package services

import (
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

// TravelMatrix is an index-addressed travel table over the planning nodes.
// Index 0 is always the depot; indices 1..n are the geocoded stops in input
// order. m[i][j] is travel from node i to node j.
type TravelMatrix [][]ports.TravelResult

// Upper bound on 2-opt improvement sweeps so sequencing always terminates in
// time proportional to the square of the cluster size.
const maxTwoOptSweeps = 32

// SequenceCluster orders the given matrix node indices into a short tour that
// starts and ends conceptually at the depot (node 0). Construction is greedy
// nearest-neighbor on travel duration; the result is then polished with a
// bounded 2-opt pass. Time windows are ignored here; feasibility against the
// clock is checked by the schedule builder downstream.
func SequenceCluster(m TravelMatrix, nodes []int) []int {
	if len(nodes) < 2 {
		return append([]int(nil), nodes...)
	}

	order := nearestNeighborOrder(m, nodes)
	return twoOptImprove(m, order)
}

// nearestNeighborOrder repeatedly appends the unvisited node with the least
// travel duration from the current position, starting at the depot.
func nearestNeighborOrder(m TravelMatrix, nodes []int) []int {
	remaining := append([]int(nil), nodes...)
	order := make([]int, 0, len(nodes))

	current := 0
	for len(remaining) > 0 {
		bestIdx := 0
		bestSeconds := m[current][remaining[0]].DurationSeconds

		// Tie-breaker: the lower node index wins, ensuring deterministic
		// ordering when durations are equal.
		for i := 1; i < len(remaining); i++ {
			s := m[current][remaining[i]].DurationSeconds
			if s < bestSeconds || (s == bestSeconds && remaining[i] < remaining[bestIdx]) {
				bestSeconds = s
				bestIdx = i
			}
		}

		current = remaining[bestIdx]
		order = append(order, current)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return order
}

// twoOptImprove applies pairwise segment reversals while they strictly
// shorten the depot-to-depot tour, up to maxTwoOptSweeps full passes.
func twoOptImprove(m TravelMatrix, order []int) []int {
	best := append([]int(nil), order...)
	bestSeconds := tourSeconds(m, best)
	n := len(best)

	for sweep := 0; sweep < maxTwoOptSweeps; sweep++ {
		improved := false
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				candidate := twoOptSwap(best, i, k)
				if s := tourSeconds(m, candidate); s < bestSeconds {
					best = candidate
					bestSeconds = s
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}

	return best
}

// twoOptSwap returns a copy of the order with the segment [i, k] reversed.
func twoOptSwap(order []int, i, k int) []int {
	out := make([]int, len(order))
	copy(out, order[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = order[j]
		pos++
	}
	copy(out[pos:], order[k+1:])
	return out
}

// tourSeconds totals travel duration for depot -> order... -> depot.
func tourSeconds(m TravelMatrix, order []int) int {
	if len(order) == 0 {
		return 0
	}

	total := m[0][order[0]].DurationSeconds
	for i := 0; i < len(order)-1; i++ {
		total += m[order[i]][order[i+1]].DurationSeconds
	}
	total += m[order[len(order)-1]][0].DurationSeconds

	return total
}
