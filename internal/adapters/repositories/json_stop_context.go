package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// File-backed implementation of the StopContextSource port for
// database-free deployments. The reference file is read once at
// construction; edits require a restart.
type JSONStopContextSource struct {
	entries []domain.ContextEntry
}

func NewJSONStopContextSource(path string) (*JSONStopContextSource, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stop context file: read %q: %w", path, err)
	}

	var entries []domain.ContextEntry
	if err := json.Unmarshal(bytes, &entries); err != nil {
		return nil, fmt.Errorf("stop context file: parse %q: %w", path, err)
	}

	return &JSONStopContextSource{entries: entries}, nil
}

func (s *JSONStopContextSource) Entries(context.Context) ([]domain.ContextEntry, error) {
	return s.entries, nil
}
