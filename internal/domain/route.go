package domain

import "time"

// EntryType classifies a schedule row.
type EntryType string

const (
	EntryDepotStart EntryType = "DEPOT_START"
	EntryDelivery   EntryType = "DELIVERY"
	EntryLunch      EntryType = "LUNCH"
	EntryDepotEnd   EntryType = "DEPOT_RETURN"
)

// ScheduleEntry is one timestamped row of a route's schedule.
// WindowStart/WindowEnd hold the 30-minute display bucket containing the
// arrival time; they are zero for depot and lunch rows.
type ScheduleEntry struct {
	Type        EntryType
	StopID      int
	Address     string
	Arrive      time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	Notes       []string
}

// Cluster is a provisional group of stops assigned to one driver before
// sequencing. Size and demand invariants are enforced by the assigner.
type Cluster struct {
	Stops        []Stop
	TotalGallons float64
}

// Route is the planned day for a single driver: the ordered stops, the
// timestamped schedule, and the feasibility classification. It is planning
// output only and is not persisted by the core.
type Route struct {
	DriverName   string
	Stops        []Stop
	Schedule     []ScheduleEntry
	TotalGallons float64
	Feasible     bool
	Err          string
	MapsLink     string
}
