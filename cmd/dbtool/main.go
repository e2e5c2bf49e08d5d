package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/loadlogic/fleet-route-planner/internal/adapters/repositories"
	"github.com/loadlogic/fleet-route-planner/internal/platform/db"
)

// dbtool initializes the Postgres schema and seeds the stop context
// reference set from a JSON file. Run it once per environment.
func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	seedPath := os.Getenv("STOP_CONTEXT_SEED_PATH")
	if seedPath == "" {
		seedPath = "data/seeds/stop_context.json"
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open postgres")
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("init schema")
	}

	if err := repositories.SeedStopContextFromJSON(conn, seedPath); err != nil {
		log.Fatal().Err(err).Msg("seed stop context")
	}

	log.Info().Str("seed", seedPath).Msg("schema initialized and stop context seeded")
}
