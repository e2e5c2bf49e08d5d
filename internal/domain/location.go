package domain

import "fmt"

// LocationKind discriminates the two accepted stop location forms.
type LocationKind string

const (
	LocationAddress LocationKind = "address"
	LocationCoords  LocationKind = "coords"
)

// Location is a tagged union: either free-form address text or a coordinate
// pair. Validated once at the request boundary; downstream code switches on
// Kind instead of guessing.
type Location struct {
	Kind    LocationKind
	Address string
	Coords  Coordinates
}

func AddressLocation(address string) Location {
	return Location{Kind: LocationAddress, Address: address}
}

func CoordsLocation(c Coordinates) Location {
	return Location{Kind: LocationCoords, Coords: c}
}

// String renders the location as it should appear in schedules and
// navigation links: the address text, or "lat,lon" for coordinate stops.
func (l Location) String() string {
	if l.Kind == LocationAddress {
		return l.Address
	}
	return fmt.Sprintf("%.6f,%.6f", l.Coords.Lat, l.Coords.Lon)
}
