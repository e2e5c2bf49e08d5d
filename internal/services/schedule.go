package services

import (
	"fmt"
	"time"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// ScheduleInput carries the clock configuration for one route walk.
type ScheduleInput struct {
	Depot          domain.Depot
	Depart         time.Time
	LunchStart     time.Time
	LunchEnd       time.Time
	LunchMinutes   int
	LunchSkippable bool
}

// BuildSchedule walks a sequenced route once, computing arrival and departure
// times, inserting at most one lunch break, and classifying the route
// feasible or infeasible. The walk always completes so every field is
// reported best-effort; only the first violation is retained.
//
// Resolution order at each stop: time-window wait first, then the lunch
// check against the post-wait clock, then service time.
func BuildSchedule(
	in ScheduleInput,
	m TravelMatrix,
	order []int,
	stopsByNode map[int]domain.Stop,
) ([]domain.ScheduleEntry, bool, string) {
	now := in.Depart
	entries := make([]domain.ScheduleEntry, 0, len(order)+3)
	entries = append(entries, domain.ScheduleEntry{
		Type:    domain.EntryDepotStart,
		Address: in.Depot.Location.String(),
		Arrive:  now,
	})

	infeasible := false
	cause := ""
	lunchDone := false

	prev := 0
	for i, node := range order {
		stop := stopsByNode[node]

		now = now.Add(time.Duration(m[prev][node].DurationSeconds) * time.Second)

		// Wait out a per-stop window that has not opened yet; arriving after
		// it closes is the route's violation, not a reason to stop walking.
		if stop.Window != nil {
			if now.Before(stop.Window.Start) {
				now = stop.Window.Start
			}
			if now.After(stop.Window.End) && !infeasible {
				infeasible = true
				cause = fmt.Sprintf("time window violation at %s", stop.Location.String())
			}
		}

		if !lunchDone && in.LunchMinutes > 0 && !now.Before(in.LunchStart) && !now.After(in.LunchEnd) {
			lunchDone = true
			overruns := lunchWouldOverrun(in, m, order, i, now, stopsByNode)
			if !(in.LunchSkippable && overruns) {
				entries = append(entries, domain.ScheduleEntry{
					Type:    domain.EntryLunch,
					Address: stop.Location.String(),
					Arrive:  now,
				})
				now = now.Add(time.Duration(in.LunchMinutes) * time.Minute)
			}
		}

		bucketStart, bucketEnd := displayBucket(now)
		entries = append(entries, domain.ScheduleEntry{
			Type:        domain.EntryDelivery,
			StopID:      stop.ID,
			Address:     stop.Location.String(),
			Arrive:      now,
			WindowStart: bucketStart,
			WindowEnd:   bucketEnd,
			Notes:       stop.Notes,
		})

		now = now.Add(time.Duration(stop.ServiceMinutes) * time.Minute)
		prev = node
	}

	now = now.Add(time.Duration(m[prev][0].DurationSeconds) * time.Second)
	entries = append(entries, domain.ScheduleEntry{
		Type:    domain.EntryDepotEnd,
		Address: in.Depot.Location.String(),
		Arrive:  now,
	})

	if now.After(in.Depot.WorkEnd) && !infeasible {
		infeasible = true
		cause = "exceeds working hours"
	}

	return entries, !infeasible, cause
}

// lunchWouldOverrun projects the rest of the route with lunch included and
// reports whether the return to depot would pass the working-hours end.
// The projection ignores window waits, so it can under-estimate but never
// forces a lunch that alone breaks feasibility.
func lunchWouldOverrun(
	in ScheduleInput,
	m TravelMatrix,
	order []int,
	i int,
	now time.Time,
	stopsByNode map[int]domain.Stop,
) bool {
	projected := now.Add(time.Duration(in.LunchMinutes) * time.Minute)

	for j := i; j < len(order); j++ {
		projected = projected.Add(time.Duration(stopsByNode[order[j]].ServiceMinutes) * time.Minute)
		next := 0
		if j+1 < len(order) {
			next = order[j+1]
		}
		projected = projected.Add(time.Duration(m[order[j]][next].DurationSeconds) * time.Second)
	}

	return projected.After(in.Depot.WorkEnd)
}
