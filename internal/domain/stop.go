package domain

import "time"

// TimeWindow bounds when a stop may be serviced, anchored to the planning day.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Represents a single delivery stop within one planning request.
// A Stop is created from request input, enriched once (context lookup,
// geocoding), and immutable thereafter.
type Stop struct {
	ID             int
	Location       Location
	Coords         Coordinates
	Gallons        float64
	ServiceMinutes int
	Window         *TimeWindow
	Notes          []string
}

// ContextEntry is one record of the read-only stop context reference set.
// Window bounds are HH:MM strings; they are resolved against the planning
// day when a stop is enriched.
type ContextEntry struct {
	Match          string   `json:"match"`
	ServiceMinutes int      `json:"service_minutes"`
	Notes          []string `json:"notes"`
	WindowStart    string   `json:"window_start"`
	WindowEnd      string   `json:"window_end"`
}
