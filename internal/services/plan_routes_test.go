package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadlogic/fleet-route-planner/internal/adapters/distance"
	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

var planDepot = domain.Coordinates{Lat: 33.4484, Lon: -112.0740}

type fakeContextSource struct {
	entries []domain.ContextEntry
	err     error
}

func (f *fakeContextSource) Entries(context.Context) ([]domain.ContextEntry, error) {
	return f.entries, f.err
}

func coordStops(n int) []domain.Stop {
	stops := make([]domain.Stop, n)
	for i := range stops {
		c := domain.Coordinates{Lat: 33.4484 + 0.004*float64(i+1), Lon: -112.0740 + 0.003*float64(i+1)}
		stops[i] = domain.Stop{
			ID:       i + 1,
			Location: domain.CoordsLocation(c),
			Gallons:  100,
		}
	}
	return stops
}

func basePlanRequest(t *testing.T, stops []domain.Stop) PlanRequest {
	t.Helper()
	return PlanRequest{
		Day:                   schedDay,
		Depot:                 domain.CoordsLocation(planDepot),
		Stops:                 stops,
		MaxDrivers:            5,
		MaxStopsPerDriver:     8,
		Depart:                mustClock(t, "08:00"),
		WorkStart:             mustClock(t, "08:00"),
		WorkEnd:               mustClock(t, "18:00"),
		LunchStart:            mustClock(t, "11:30"),
		LunchEnd:              mustClock(t, "13:00"),
		LunchMinutes:          30,
		LunchSkippable:        true,
		DefaultServiceMinutes: 20,
	}
}

func testPlanner() *Planner {
	return &Planner{
		Estimator: distance.NewHaversineEstimator(),
		Workers:   2,
		Log:       zerolog.Nop(),
	}
}

func TestPlanRoutesSingleFeasibleRoute(t *testing.T) {
	req := basePlanRequest(t, coordStops(7))
	req.MaxDrivers = 6
	req.MaxStopsPerDriver = 7

	result, err := testPlanner().PlanRoutes(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.PlanID)
	assert.True(t, result.Feasible)
	assert.Empty(t, result.Err)
	assert.Empty(t, result.Unassigned)
	assert.Empty(t, result.Excluded)

	require.Len(t, result.Routes, 1)
	route := result.Routes[0]
	assert.Equal(t, "Driver 1", route.DriverName)
	assert.Len(t, route.Stops, 7)
	assert.True(t, route.Feasible)
	assert.Equal(t, 700.0, route.TotalGallons)
	assert.Contains(t, route.MapsLink, "waypoints=")

	require.NotEmpty(t, route.Schedule)
	assert.Equal(t, domain.EntryDepotStart, route.Schedule[0].Type)
	assert.Equal(t, domain.EntryDepotEnd, route.Schedule[len(route.Schedule)-1].Type)
}

func TestPlanRoutesIdempotent(t *testing.T) {
	req := basePlanRequest(t, coordStops(12))
	req.MaxDrivers = 3
	req.MaxStopsPerDriver = 5
	planner := testPlanner()

	first, err := planner.PlanRoutes(context.Background(), req)
	require.NoError(t, err)
	second, err := planner.PlanRoutes(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, len(first.Routes), len(second.Routes))
	for i := range first.Routes {
		assert.Equal(t, first.Routes[i].DriverName, second.Routes[i].DriverName)
		assert.Equal(t, stopIDs(first.Routes[i].Stops), stopIDs(second.Routes[i].Stops))
	}
	assert.Equal(t, stopIDs(first.Unassigned), stopIDs(second.Unassigned))
}

func TestPlanRoutesFleetOverflowUnassigned(t *testing.T) {
	req := basePlanRequest(t, coordStops(10))
	req.MaxDrivers = 1
	req.MaxStopsPerDriver = 7

	result, err := testPlanner().PlanRoutes(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, result.Feasible)
	assert.Equal(t, "3 stops could not be assigned within fleet limits", result.Err)
	require.Len(t, result.Routes, 1)
	assert.Len(t, result.Routes[0].Stops, 7)
	assert.Len(t, result.Unassigned, 3)
}

func TestPlanRoutesExcludesUnresolvedAddresses(t *testing.T) {
	planner := testPlanner()
	planner.Geocoder = distance.NewMockGeocoder(map[string]domain.Coordinates{
		"1901 W Madison St, Phoenix, AZ 85009": {Lat: 33.4460, Lon: -112.0850},
	})

	stops := coordStops(1)
	stops = append(stops,
		domain.Stop{ID: 2, Location: domain.AddressLocation("1901 W Madison St, Phoenix, AZ 85009")},
		domain.Stop{ID: 3, Location: domain.AddressLocation("1 Nowhere Ln, Atlantis")},
	)

	result, err := planner.PlanRoutes(context.Background(), basePlanRequest(t, stops))
	require.NoError(t, err)

	assert.False(t, result.Feasible)
	assert.Equal(t, "1 stops could not be resolved", result.Err)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, 3, result.Excluded[0].Stop.ID)
	assert.Contains(t, result.Excluded[0].Reason, "geocode")

	routed := 0
	for _, r := range result.Routes {
		routed += len(r.Stops)
	}
	assert.Equal(t, len(stops), routed+len(result.Unassigned)+len(result.Excluded))
}

func TestPlanRoutesContextEnrichment(t *testing.T) {
	planner := testPlanner()
	planner.Geocoder = distance.NewMockGeocoder(map[string]domain.Coordinates{
		"1901 W Madison St, Phoenix, AZ 85009": {Lat: 33.4460, Lon: -112.0850},
	})
	planner.Context = &fakeContextSource{entries: []domain.ContextEntry{{
		Match:          "1901 W Madison St, Phoenix, AZ 85009",
		ServiceMinutes: 35,
		Notes:          []string{"Gate code 4417"},
		WindowStart:    "09:00",
		WindowEnd:      "15:00",
	}}}

	stops := []domain.Stop{{ID: 1, Location: domain.AddressLocation("1901 W Madison St, Phoenix, AZ 85009")}}
	result, err := planner.PlanRoutes(context.Background(), basePlanRequest(t, stops))
	require.NoError(t, err)

	require.Len(t, result.Routes, 1)
	require.Len(t, result.Routes[0].Stops, 1)
	enriched := result.Routes[0].Stops[0]
	assert.Equal(t, 35, enriched.ServiceMinutes)
	assert.Contains(t, enriched.Notes, "Gate code 4417")
	require.NotNil(t, enriched.Window)
	assert.Equal(t, mustClock(t, "09:00"), enriched.Window.Start)

	// The depot is minutes away, so the schedule waits for the window.
	var delivery *domain.ScheduleEntry
	for i := range result.Routes[0].Schedule {
		if result.Routes[0].Schedule[i].Type == domain.EntryDelivery {
			delivery = &result.Routes[0].Schedule[i]
			break
		}
	}
	require.NotNil(t, delivery)
	assert.Equal(t, mustClock(t, "09:00"), delivery.Arrive)
	assert.True(t, result.Routes[0].Feasible)
}

func TestPlanRoutesContextSourceFailureDegradesToDefaults(t *testing.T) {
	planner := testPlanner()
	planner.Context = &fakeContextSource{err: assert.AnError}

	result, err := planner.PlanRoutes(context.Background(), basePlanRequest(t, coordStops(2)))
	require.NoError(t, err)

	assert.True(t, result.Feasible)
	for _, s := range result.Routes[0].Stops {
		assert.Equal(t, 20, s.ServiceMinutes)
	}
}

func TestPlanRoutesAddressDepotWithoutGeocoder(t *testing.T) {
	req := basePlanRequest(t, coordStops(1))
	req.Depot = domain.AddressLocation("100 Depot Way, Phoenix, AZ")

	_, err := testPlanner().PlanRoutes(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no geocoder configured")
}

func TestPlanRoutesNoStops(t *testing.T) {
	result, err := testPlanner().PlanRoutes(context.Background(), basePlanRequest(t, nil))
	require.NoError(t, err)

	assert.True(t, result.Feasible)
	assert.Empty(t, result.Routes)
	assert.Empty(t, result.Unassigned)
	assert.Empty(t, result.Excluded)
}

func stopIDs(stops []domain.Stop) []int {
	ids := make([]int, len(stops))
	for i, s := range stops {
		ids[i] = s.ID
	}
	return ids
}
