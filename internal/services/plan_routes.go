package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

// PlanRequest is the validated, fully-resolved input for one planning call.
// All clock fields are anchored to the planning day; defaults are applied at
// the request boundary, never here.
type PlanRequest struct {
	Day                   time.Time
	Depot                 domain.Location
	Stops                 []domain.Stop
	MaxDrivers            int
	MaxStopsPerDriver     int
	TruckCapacity         float64
	Depart                time.Time
	WorkStart             time.Time
	WorkEnd               time.Time
	LunchStart            time.Time
	LunchEnd              time.Time
	LunchMinutes          int
	LunchSkippable        bool
	DefaultServiceMinutes int
}

// ExcludedStop is a stop dropped before clustering, with the reason.
type ExcludedStop struct {
	Stop   domain.Stop
	Reason string
}

// PlanResult is the aggregated outcome of one planning call. Feasible is
// true only when every produced route is feasible and no stop was left
// unassigned or excluded.
type PlanResult struct {
	PlanID     string
	Feasible   bool
	Routes     []domain.Route
	Unassigned []domain.Stop
	Excluded   []ExcludedStop
	Err        string
}

// Planner wires the external collaborators consumed by the core. It holds no
// mutable state; each planning call constructs and discards its own working
// data, so a single Planner is safe for concurrent use.
type Planner struct {
	Geocoder  ports.Geocoder          // optional; required only for address stops
	Estimator ports.TravelEstimator
	Context   ports.StopContextSource // optional
	Workers   int
	Log       zerolog.Logger
}

type clusterOutcome struct {
	route domain.Route
}

// PlanRoutes runs the full pipeline: enrich -> geocode -> travel matrix ->
// sweep partition -> per-cluster sequencing, scheduling and link building.
// Failures are local and accumulated: one unresolvable stop or one
// infeasible route never prevents the rest of the plan from being computed.
// An error return is reserved for infrastructure failures that make the
// whole plan impossible (unresolvable depot, travel matrix unavailable).
func (p *Planner) PlanRoutes(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	planID := uuid.NewString()
	log := p.Log.With().Str("plan_id", planID).Logger()

	depot, err := p.resolveDepot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	stops := p.enrichStops(ctx, req, log)

	included, excluded := p.geocodeStops(ctx, stops, log)

	result := &PlanResult{PlanID: planID, Excluded: excluded}
	if len(included) == 0 {
		result.Feasible = len(excluded) == 0
		if len(excluded) > 0 {
			result.Err = fmt.Sprintf("%d stops could not be resolved", len(excluded))
		}
		return result, nil
	}

	matrix, nodeByStopID, err := p.travelMatrix(ctx, depot.Coords, included)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	clusters, unassigned := SweepClusters(depot.Coords, included, req.MaxDrivers, req.MaxStopsPerDriver, req.TruckCapacity)
	result.Unassigned = unassigned

	// Clusters share no mutable state after the sweep, so sequencing and
	// scheduling fan out across a bounded worker pool purely for latency.
	workers := p.Workers
	if workers <= 0 {
		workers = 4
	}
	sem := make(chan struct{}, workers)
	outcomes := make([]clusterOutcome, len(clusters))
	var wg sync.WaitGroup

	for i, cluster := range clusters {
		wg.Add(1)
		go func(i int, cluster domain.Cluster) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			outcomes[i] = clusterOutcome{route: p.planCluster(i, cluster, req, depot, matrix, nodeByStopID)}
		}(i, cluster)
	}
	wg.Wait()

	allFeasible := true
	for _, o := range outcomes {
		if !o.route.Feasible {
			allFeasible = false
		}
		result.Routes = append(result.Routes, o.route)
	}

	result.Feasible = allFeasible && len(unassigned) == 0 && len(excluded) == 0
	switch {
	case len(unassigned) > 0:
		result.Err = fmt.Sprintf("%d stops could not be assigned within fleet limits", len(unassigned))
	case len(excluded) > 0:
		result.Err = fmt.Sprintf("%d stops could not be resolved", len(excluded))
	case !allFeasible:
		result.Err = "one or more routes are infeasible"
	}

	log.Info().
		Int("stops", len(req.Stops)).
		Int("routes", len(result.Routes)).
		Int("unassigned", len(unassigned)).
		Int("excluded", len(excluded)).
		Bool("feasible", result.Feasible).
		Msg("plan computed")

	return result, nil
}

func (p *Planner) resolveDepot(ctx context.Context, req PlanRequest) (domain.Depot, error) {
	depot := domain.Depot{
		Location:  req.Depot,
		WorkStart: req.WorkStart,
		WorkEnd:   req.WorkEnd,
	}

	if req.Depot.Kind == domain.LocationCoords {
		depot.Coords = req.Depot.Coords
		return depot, nil
	}

	if p.Geocoder == nil {
		return depot, fmt.Errorf("depot %q: no geocoder configured for address locations", req.Depot.Address)
	}
	coords, err := p.Geocoder.Geocode(ctx, req.Depot.Address)
	if err != nil {
		return depot, fmt.Errorf("geocode depot %q: %w", req.Depot.Address, err)
	}
	depot.Coords = coords

	return depot, nil
}

// enrichStops merges context overrides into each stop and fills remaining
// service-time defaults. Context source failures degrade to defaults; they
// never abort the plan.
func (p *Planner) enrichStops(ctx context.Context, req PlanRequest, log zerolog.Logger) []domain.Stop {
	var entries []domain.ContextEntry
	if p.Context != nil {
		var err error
		entries, err = p.Context.Entries(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("stop context unavailable, using defaults")
			entries = nil
		}
	}

	out := make([]domain.Stop, len(req.Stops))
	for i, s := range req.Stops {
		if s.Location.Kind == domain.LocationAddress {
			if hit, score := BestContextMatch(s.Location.Address, entries); hit != nil {
				p.applyContext(&s, hit, req.Day, log)
				log.Debug().Str("address", s.Location.Address).Float64("score", score).Msg("context match")
			}
		}
		if s.ServiceMinutes <= 0 {
			s.ServiceMinutes = req.DefaultServiceMinutes
		}
		out[i] = s
	}

	return out
}

// applyContext fills the gaps in a stop from a matched reference entry.
// Explicit per-stop request values always win over the reference set.
func (p *Planner) applyContext(s *domain.Stop, hit *domain.ContextEntry, day time.Time, log zerolog.Logger) {
	if s.ServiceMinutes <= 0 && hit.ServiceMinutes > 0 {
		s.ServiceMinutes = hit.ServiceMinutes
	}
	s.Notes = append(s.Notes, hit.Notes...)

	if s.Window == nil && hit.WindowStart != "" && hit.WindowEnd != "" {
		start, err1 := ClockTime(day, hit.WindowStart)
		end, err2 := ClockTime(day, hit.WindowEnd)
		if err1 != nil || err2 != nil {
			log.Warn().Str("match", hit.Match).Msg("ignoring malformed context time window")
			return
		}
		s.Window = &domain.TimeWindow{Start: start, End: end}
	}
}

// geocodeStops resolves coordinates for every stop. Stops that cannot be
// resolved are excluded and reported; they do not abort the plan.
func (p *Planner) geocodeStops(ctx context.Context, stops []domain.Stop, log zerolog.Logger) ([]domain.Stop, []ExcludedStop) {
	included := make([]domain.Stop, 0, len(stops))
	var excluded []ExcludedStop

	for _, s := range stops {
		if s.Location.Kind == domain.LocationCoords {
			s.Coords = s.Location.Coords
			included = append(included, s)
			continue
		}

		if p.Geocoder == nil {
			excluded = append(excluded, ExcludedStop{Stop: s, Reason: "no geocoder configured for address locations"})
			continue
		}
		coords, err := p.Geocoder.Geocode(ctx, s.Location.Address)
		if err != nil {
			log.Warn().Err(err).Str("address", s.Location.Address).Msg("stop excluded")
			excluded = append(excluded, ExcludedStop{Stop: s, Reason: fmt.Sprintf("geocode: %v", err)})
			continue
		}
		s.Coords = coords
		included = append(included, s)
	}

	return included, excluded
}

// travelMatrix fetches the full (n+1)x(n+1) travel table over depot plus
// included stops. A single batched lookup is preferred when the estimator
// supports it, mirroring one matrix call instead of n^2 pair calls.
func (p *Planner) travelMatrix(ctx context.Context, depot domain.Coordinates, stops []domain.Stop) (TravelMatrix, map[int]int, error) {
	points := make([]domain.Coordinates, 0, len(stops)+1)
	points = append(points, depot)
	nodeByStopID := make(map[int]int, len(stops))
	for i, s := range stops {
		points = append(points, s.Coords)
		nodeByStopID[s.ID] = i + 1
	}

	if me, ok := p.Estimator.(ports.TravelMatrixEstimator); ok {
		rows, err := me.TravelMatrix(ctx, points)
		if err != nil {
			return nil, nil, fmt.Errorf("travel matrix: %w", err)
		}
		return TravelMatrix(rows), nodeByStopID, nil
	}

	m := make(TravelMatrix, len(points))
	for i := range points {
		m[i] = make([]ports.TravelResult, len(points))
		for j := range points {
			if i == j {
				continue
			}
			r, err := p.Estimator.Travel(ctx, points[i], points[j])
			if err != nil {
				return nil, nil, fmt.Errorf("travel %d -> %d: %w", i, j, err)
			}
			m[i][j] = r
		}
	}

	return m, nodeByStopID, nil
}

// planCluster sequences, schedules and links one cluster into a Route.
func (p *Planner) planCluster(
	idx int,
	cluster domain.Cluster,
	req PlanRequest,
	depot domain.Depot,
	matrix TravelMatrix,
	nodeByStopID map[int]int,
) domain.Route {
	nodes := make([]int, 0, len(cluster.Stops))
	stopsByNode := make(map[int]domain.Stop, len(cluster.Stops))
	for _, s := range cluster.Stops {
		n := nodeByStopID[s.ID]
		nodes = append(nodes, n)
		stopsByNode[n] = s
	}

	order := SequenceCluster(matrix, nodes)

	ordered := make([]domain.Stop, 0, len(order))
	waypoints := make([]string, 0, len(order))
	for _, n := range order {
		s := stopsByNode[n]
		ordered = append(ordered, s)
		waypoints = append(waypoints, s.Location.String())
	}

	entries, feasible, cause := BuildSchedule(ScheduleInput{
		Depot:          depot,
		Depart:         req.Depart,
		LunchStart:     req.LunchStart,
		LunchEnd:       req.LunchEnd,
		LunchMinutes:   req.LunchMinutes,
		LunchSkippable: req.LunchSkippable,
	}, matrix, order, stopsByNode)

	return domain.Route{
		DriverName:   fmt.Sprintf("Driver %d", idx+1),
		Stops:        ordered,
		Schedule:     entries,
		TotalGallons: cluster.TotalGallons,
		Feasible:     feasible,
		Err:          cause,
		MapsLink:     MapsDirectionsURL(depot.Location.String(), waypoints),
	}
}
