package ports

import (
	"context"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// TravelCache stores travel results keyed by normalized point strings
// ("lat,lon" rounded to five decimals). A nil cache is a valid
// configuration; providers must tolerate its absence.
type TravelCache interface {
	// Fetch cached results for one origin and multiple destinations.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]TravelResult, error)
	// Store many results for a single origin.
	PutMany(ctx context.Context, origin string, results map[string]TravelResult) error
}

// GeocodeCache stores address -> coordinate resolutions.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}
