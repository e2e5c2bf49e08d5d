package distance

import (
	"context"
	"fmt"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

// MockGeocoder resolves addresses from a fixed table. Test helper.
type MockGeocoder struct {
	m map[string]domain.Coordinates
}

func NewMockGeocoder(entries map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{m: entries}
}

func (g *MockGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	c, ok := g.m[normalize(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%q: %w", address, ports.ErrAddressNotFound)
	}
	return c, nil
}
