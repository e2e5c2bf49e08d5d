package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/loadlogic/fleet-route-planner/internal/api/dto"
	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/metrics"
	"github.com/loadlogic/fleet-route-planner/internal/services"
)

// Boundary defaults. Optional request fields resolve to these exactly once,
// here; the planning core never applies defaults.
const (
	defaultMaxDrivers        = 5
	defaultMaxStopsPerDriver = 8
	defaultWorkStart         = "08:00"
	defaultWorkEnd           = "18:00"
	defaultLunchStart        = "11:30"
	defaultLunchEnd          = "13:00"
	defaultLunchMinutes      = 30
	defaultServiceMinutes    = 20
)

type PlanHandler struct {
	Planner *services.Planner
	Log     zerolog.Logger
}

// Plan validates one planning request, runs the routing pipeline, and maps
// the result to the wire shape. Validation happens once here; everything
// downstream works with resolved values.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	planReq, err := resolvePlanRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := h.Planner.PlanRoutes(r.Context(), planReq)
	metrics.PlanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PlansTotal.WithLabelValues("error").Inc()
		h.Log.Error().Err(err).Msg("plan routes failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	observePlan(result)
	writeJSON(w, r, http.StatusOK, toPlanResponse(result, planReq.TruckCapacity))
}

// resolvePlanRequest applies defaults, validates bounds, and converts the
// wire request into the core's resolved form.
func resolvePlanRequest(req dto.PlanRequest) (services.PlanRequest, error) {
	var out services.PlanRequest

	depot, err := req.Depot.Resolve()
	if err != nil {
		return out, fmt.Errorf("depot: %v", err)
	}

	if len(req.Stops) == 0 {
		return out, fmt.Errorf("stops must not be empty")
	}

	maxDrivers := req.MaxDrivers
	if maxDrivers == 0 {
		maxDrivers = defaultMaxDrivers
	}
	if maxDrivers < 1 || maxDrivers > 50 {
		return out, fmt.Errorf("max_drivers must be between 1 and 50")
	}

	maxStops := req.MaxStopsPerDriver
	if maxStops == 0 {
		maxStops = defaultMaxStopsPerDriver
	}
	if maxStops < 1 || maxStops > 100 {
		return out, fmt.Errorf("max_stops_per_driver must be between 1 and 100")
	}

	if req.TruckCapacity < 0 {
		return out, fmt.Errorf("truck_capacity must not be negative")
	}

	day := time.Now()
	if req.Date != "" {
		day, err = time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			return out, fmt.Errorf("date must be YYYY-MM-DD")
		}
	}

	workStart, err := clockField(day, req.WorkWindowStart, defaultWorkStart, "work_window_start")
	if err != nil {
		return out, err
	}
	workEnd, err := clockField(day, req.WorkWindowEnd, defaultWorkEnd, "work_window_end")
	if err != nil {
		return out, err
	}
	if !workStart.Before(workEnd) {
		return out, fmt.Errorf("work_window_start must be before work_window_end")
	}

	depart := workStart
	if req.DepartureTime != "" {
		depart, err = clockField(day, req.DepartureTime, "", "departure_time")
		if err != nil {
			return out, err
		}
	}

	lunchStart, err := clockField(day, req.LunchWindowStart, defaultLunchStart, "lunch_window_start")
	if err != nil {
		return out, err
	}
	lunchEnd, err := clockField(day, req.LunchWindowEnd, defaultLunchEnd, "lunch_window_end")
	if err != nil {
		return out, err
	}
	if lunchEnd.Before(lunchStart) {
		return out, fmt.Errorf("lunch_window_start must not be after lunch_window_end")
	}

	lunchMinutes := defaultLunchMinutes
	if req.LunchMinutes != nil {
		lunchMinutes = *req.LunchMinutes
	}
	if lunchMinutes < 0 {
		return out, fmt.Errorf("lunch_minutes must not be negative")
	}

	lunchSkippable := true
	if req.LunchSkippable != nil {
		lunchSkippable = *req.LunchSkippable
	}

	serviceDefault := req.DefaultServiceMinutes
	if serviceDefault == 0 {
		serviceDefault = defaultServiceMinutes
	}
	if serviceDefault < 1 {
		return out, fmt.Errorf("default_service_minutes must be positive")
	}

	stops := make([]domain.Stop, 0, len(req.Stops))
	for i, s := range req.Stops {
		loc, err := s.Resolve()
		if err != nil {
			return out, fmt.Errorf("stop %d: %v", i+1, err)
		}
		if s.Gallons < 0 {
			return out, fmt.Errorf("stop %d: gallons must not be negative", i+1)
		}
		if s.ServiceMinutes < 0 {
			return out, fmt.Errorf("stop %d: service_minutes must not be negative", i+1)
		}

		stop := domain.Stop{
			ID:             i + 1,
			Location:       loc,
			Gallons:        s.Gallons,
			ServiceMinutes: s.ServiceMinutes,
			Notes:          s.Notes,
		}

		if s.WindowStart != "" || s.WindowEnd != "" {
			if s.WindowStart == "" || s.WindowEnd == "" {
				return out, fmt.Errorf("stop %d: window_start and window_end must both be set", i+1)
			}
			ws, err := clockField(day, s.WindowStart, "", fmt.Sprintf("stop %d window_start", i+1))
			if err != nil {
				return out, err
			}
			we, err := clockField(day, s.WindowEnd, "", fmt.Sprintf("stop %d window_end", i+1))
			if err != nil {
				return out, err
			}
			if we.Before(ws) {
				return out, fmt.Errorf("stop %d: window_start must not be after window_end", i+1)
			}
			stop.Window = &domain.TimeWindow{Start: ws, End: we}
		}

		stops = append(stops, stop)
	}

	return services.PlanRequest{
		Day:                   day,
		Depot:                 depot,
		Stops:                 stops,
		MaxDrivers:            maxDrivers,
		MaxStopsPerDriver:     maxStops,
		TruckCapacity:         req.TruckCapacity,
		Depart:                depart,
		WorkStart:             workStart,
		WorkEnd:               workEnd,
		LunchStart:            lunchStart,
		LunchEnd:              lunchEnd,
		LunchMinutes:          lunchMinutes,
		LunchSkippable:        lunchSkippable,
		DefaultServiceMinutes: serviceDefault,
	}, nil
}

func clockField(day time.Time, value, fallback, name string) (time.Time, error) {
	if value == "" {
		value = fallback
	}
	t, err := services.ClockTime(day, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be HH:MM", name)
	}
	return t, nil
}

const etaLayout = "3:04 PM"

func toPlanResponse(result *services.PlanResult, truckCapacity float64) dto.PlanResponse {
	res := dto.PlanResponse{
		PlanID:     result.PlanID,
		Feasible:   result.Feasible,
		Drivers:    make([]dto.DriverPlanResponse, 0, len(result.Routes)),
		Unassigned: make([]string, 0, len(result.Unassigned)),
		Error:      result.Err,
	}

	for _, route := range result.Routes {
		driver := dto.DriverPlanResponse{
			DriverName:        route.DriverName,
			OrderedDeliveries: make([]string, 0, len(route.Stops)),
			Schedule:          make([]dto.ScheduleEntryResponse, 0, len(route.Schedule)),
			GoogleMapsLink:    route.MapsLink,
			TotalGallons:      route.TotalGallons,
			TruckCapacity:     truckCapacity,
			Feasible:          route.Feasible,
			Error:             route.Err,
		}
		for _, s := range route.Stops {
			driver.OrderedDeliveries = append(driver.OrderedDeliveries, s.Location.String())
		}
		for _, e := range route.Schedule {
			entry := dto.ScheduleEntryResponse{
				Type:    string(e.Type),
				ETA:     e.Arrive.Format(etaLayout),
				Address: e.Address,
				Notes:   e.Notes,
			}
			if e.Type == domain.EntryDelivery {
				entry.Window = e.WindowStart.Format(etaLayout) + " - " + e.WindowEnd.Format(etaLayout)
			}
			driver.Schedule = append(driver.Schedule, entry)
		}
		res.Drivers = append(res.Drivers, driver)
	}

	for _, s := range result.Unassigned {
		res.Unassigned = append(res.Unassigned, s.Location.String())
	}
	for _, e := range result.Excluded {
		res.Excluded = append(res.Excluded, dto.ExcludedStopResponse{
			Stop:  e.Stop.Location.String(),
			Error: e.Reason,
		})
	}

	return res
}

func observePlan(result *services.PlanResult) {
	outcome := "feasible"
	if !result.Feasible {
		outcome = "infeasible"
	}
	metrics.PlansTotal.WithLabelValues(outcome).Inc()

	for _, route := range result.Routes {
		if !route.Feasible {
			metrics.InfeasibleRoutes.Inc()
		}
	}
	metrics.ExcludedStops.Add(float64(len(result.Excluded)))
	metrics.UnassignedStops.Add(float64(len(result.Unassigned)))
}
