package dto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Location is the wire form of the address/coords union:
// {"type":"address","value":"..."} or {"type":"coords","value":{"lat":..,"lon":..}}.
type Location struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type coordsValue struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Resolve validates the union and converts it to the domain value type.
func (l Location) Resolve() (domain.Location, error) {
	switch l.Type {
	case "address":
		var addr string
		if err := json.Unmarshal(l.Value, &addr); err != nil {
			return domain.Location{}, errors.New("address value must be a string")
		}
		if addr == "" {
			return domain.Location{}, errors.New("address value must be non-empty")
		}
		return domain.AddressLocation(addr), nil

	case "coords":
		var c coordsValue
		if err := json.Unmarshal(l.Value, &c); err != nil || c.Lat == nil || c.Lon == nil {
			return domain.Location{}, errors.New("coords value must be an object with lat and lon")
		}
		if *c.Lat < -90 || *c.Lat > 90 || *c.Lon < -180 || *c.Lon > 180 {
			return domain.Location{}, errors.New("coords out of range")
		}
		return domain.CoordsLocation(domain.Coordinates{Lat: *c.Lat, Lon: *c.Lon}), nil

	default:
		return domain.Location{}, fmt.Errorf("location type must be \"address\" or \"coords\", got %q", l.Type)
	}
}

type StopRequest struct {
	Location
	Gallons        float64  `json:"gallons"`
	ServiceMinutes int      `json:"service_minutes"`
	WindowStart    string   `json:"window_start"`
	WindowEnd      string   `json:"window_end"`
	Notes          []string `json:"notes"`
}

type PlanRequest struct {
	Depot                 Location      `json:"depot"`
	Stops                 []StopRequest `json:"stops"`
	MaxDrivers            int           `json:"max_drivers"`
	MaxStopsPerDriver     int           `json:"max_stops_per_driver"`
	TruckCapacity         float64       `json:"truck_capacity"`
	Date                  string        `json:"date"`
	DepartureTime         string        `json:"departure_time"`
	WorkWindowStart       string        `json:"work_window_start"`
	WorkWindowEnd         string        `json:"work_window_end"`
	LunchWindowStart      string        `json:"lunch_window_start"`
	LunchWindowEnd        string        `json:"lunch_window_end"`
	LunchMinutes          *int          `json:"lunch_minutes"`
	LunchSkippable        *bool         `json:"lunch_skippable"`
	DefaultServiceMinutes int           `json:"default_service_minutes"`
}

type ScheduleEntryResponse struct {
	Type    string   `json:"type"`
	ETA     string   `json:"eta"`
	Window  string   `json:"window,omitempty"`
	Address string   `json:"address"`
	Notes   []string `json:"notes,omitempty"`
}

type DriverPlanResponse struct {
	DriverName        string                  `json:"driver_name"`
	OrderedDeliveries []string                `json:"ordered_deliveries"`
	Schedule          []ScheduleEntryResponse `json:"schedule"`
	GoogleMapsLink    string                  `json:"google_maps_link"`
	TotalGallons      float64                 `json:"total_gallons"`
	TruckCapacity     float64                 `json:"truck_capacity,omitempty"`
	Feasible          bool                    `json:"feasible"`
	Error             string                  `json:"error,omitempty"`
}

type ExcludedStopResponse struct {
	Stop  string `json:"stop"`
	Error string `json:"error"`
}

type PlanResponse struct {
	PlanID     string                 `json:"plan_id"`
	Feasible   bool                   `json:"feasible"`
	Drivers    []DriverPlanResponse   `json:"drivers"`
	Unassigned []string               `json:"unassigned"`
	Excluded   []ExcludedStopResponse `json:"excluded,omitempty"`
	Error      string                 `json:"error,omitempty"`
}
