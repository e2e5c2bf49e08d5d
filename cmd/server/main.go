package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/loadlogic/fleet-route-planner/internal/adapters/cache"
	"github.com/loadlogic/fleet-route-planner/internal/adapters/distance"
	"github.com/loadlogic/fleet-route-planner/internal/adapters/repositories"
	"github.com/loadlogic/fleet-route-planner/internal/api"
	"github.com/loadlogic/fleet-route-planner/internal/platform/db"
	"github.com/loadlogic/fleet-route-planner/internal/platform/logging"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
	"github.com/loadlogic/fleet-route-planner/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, Google APIs) behind ports and starts the HTTP server.
// Every external dependency is optional: without a database or Redis there
// is no caching, without an API key travel times fall back to great-circle
// estimates, without a context source stops keep their defaults.
func main() {
	if err := godotenv.Load(); err == nil {
		// .env loaded; environment variables below may come from it.
	}

	log := logging.New(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "json"))

	port := getEnv("PORT", "8080")
	databaseURL := os.Getenv("DATABASE_URL")
	redisAddr := os.Getenv("REDIS_ADDR")
	mapsKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	contextPath := os.Getenv("STOP_CONTEXT_PATH")

	var travelCache ports.TravelCache
	var geocodeCache ports.GeocodeCache
	var contextSource ports.StopContextSource

	if databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres")
		}
		defer pg.Close()

		if err := repositories.InitSchema(pg); err != nil {
			log.Fatal().Err(err).Msg("init schema")
		}

		travelCache = cache.NewPGTravelCache(pg)
		geocodeCache = cache.NewPGGeocodeCache(pg)
		contextSource = repositories.NewPGStopContextSource(pg)
		log.Info().Msg("postgres caching and stop context enabled")
	} else if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		travelCache = cache.NewRedisTravelCache(client)
		log.Info().Str("addr", redisAddr).Msg("redis travel caching enabled")
	}

	if contextSource == nil && contextPath != "" {
		source, err := repositories.NewJSONStopContextSource(contextPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load stop context file")
		}
		contextSource = source
		log.Info().Str("path", contextPath).Msg("file stop context enabled")
	}

	var estimator ports.TravelEstimator
	var geocoder ports.Geocoder

	if mapsKey != "" {
		routes, err := distance.NewGoogleRoutesEstimator(mapsKey, travelCache, log)
		if err != nil {
			log.Fatal().Err(err).Msg("google routes estimator")
		}
		gc, err := distance.NewGoogleGeocoder(mapsKey, geocodeCache, log)
		if err != nil {
			log.Fatal().Err(err).Msg("google geocoder")
		}
		estimator = routes
		geocoder = gc
	} else {
		estimator = distance.NewHaversineEstimator()
		log.Warn().Msg("no GOOGLE_MAPS_API_KEY; using great-circle travel estimates, address stops cannot be resolved")
	}

	planner := &services.Planner{
		Geocoder:  geocoder,
		Estimator: estimator,
		Context:   contextSource,
		Workers:   4,
		Log:       log,
	}

	router := api.NewRouter(planner, log)

	// Timeouts are tuned for cold-cache planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Msg("server listening")
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
