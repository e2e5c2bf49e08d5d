package ports

import (
	"context"
	"errors"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Returned when a geocoding backend finds no result for an address.
var ErrAddressNotFound = errors.New("address not found")

// Contract for resolving address text to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
