package domain

import "time"

// Depot is the fixed start/end location and working-hours window shared by
// every route in one planning request.
type Depot struct {
	Location  Location
	Coords    Coordinates
	WorkStart time.Time
	WorkEnd   time.Time
}
