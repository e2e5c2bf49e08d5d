package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Postgres-backed implementation of the StopContextSource port.
type PGStopContextSource struct{ DB *sql.DB }

func NewPGStopContextSource(db *sql.DB) *PGStopContextSource {
	return &PGStopContextSource{DB: db}
}

// Return all stop context entries, stable by match key so resolver
// tie-breaks stay deterministic across calls.
func (s *PGStopContextSource) Entries(ctx context.Context) ([]domain.ContextEntry, error) {
	if s.DB == nil {
		return nil, errors.New("stop context source: DB is nil")
	}

	query := `
	SELECT
		match,
		service_minutes,
		notes,
		window_start,
		window_end
	FROM stop_context
	ORDER BY match;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stop context: query stop_context table: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ContextEntry, 0, 64)
	for rows.Next() {
		var e domain.ContextEntry
		var notesRaw []byte
		if err := rows.Scan(&e.Match, &e.ServiceMinutes, &notesRaw, &e.WindowStart, &e.WindowEnd); err != nil {
			return nil, fmt.Errorf("list stop context: scan row: %w", err)
		}
		if len(notesRaw) > 0 {
			if err := json.Unmarshal(notesRaw, &e.Notes); err != nil {
				return nil, fmt.Errorf("list stop context: decode notes for %q: %w", e.Match, err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stop context: row iteration: %w", err)
	}

	return entries, nil
}
