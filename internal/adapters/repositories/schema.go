package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Initialize the Postgres schema: cache tables plus the stop context
// reference set.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTravelCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`

	createStopContextQuery := `
	CREATE TABLE IF NOT EXISTS stop_context (
        match TEXT PRIMARY KEY,
        service_minutes INTEGER NOT NULL DEFAULT 0,
        notes JSONB NOT NULL DEFAULT '[]',
        window_start TEXT NOT NULL DEFAULT '',
        window_end TEXT NOT NULL DEFAULT ''
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_travel_cache_destination_origin
    ON travel_cache(destination, origin);
	`

	statements := []string{
		createTravelCacheQuery,
		createGeocodeCacheQuery,
		createStopContextQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the stop context table from a JSON reference file.
func SeedStopContextFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed stop context: read %q: %w", jsonPath, err)
	}

	var entries []domain.ContextEntry
	if err := json.Unmarshal(bytes, &entries); err != nil {
		return fmt.Errorf("seed stop context: parse json: %w", err)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Match) == "" {
			return fmt.Errorf("seed stop context: entry at index %d: match cannot be empty", i+1)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed stop context: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO stop_context (match, service_minutes, notes, window_start, window_end)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (match) DO UPDATE
	SET service_minutes = EXCLUDED.service_minutes,
		notes = EXCLUDED.notes,
		window_start = EXCLUDED.window_start,
		window_end = EXCLUDED.window_end;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed stop context: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		notes, err := json.Marshal(e.Notes)
		if err != nil {
			return fmt.Errorf("seed stop context: marshal notes for %q: %w", e.Match, err)
		}
		if _, err := stmt.Exec(e.Match, e.ServiceMinutes, notes, e.WindowStart, e.WindowEnd); err != nil {
			return fmt.Errorf("seed stop context: insert match=%q: %w", e.Match, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stop context: commit tx: %w", err)
	}

	return nil
}
