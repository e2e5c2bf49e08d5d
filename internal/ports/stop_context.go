package ports

import (
	"context"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Port: a read-only boundary for the stop context reference set consulted
// during enrichment.
type StopContextSource interface {
	Entries(ctx context.Context) ([]domain.ContextEntry, error)
}
