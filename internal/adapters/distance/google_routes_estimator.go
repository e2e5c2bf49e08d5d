package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/platform/obs"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

const (
	// Google limit: origins * destinations <= 625 per computeRouteMatrix call.
	// Rows are fetched one origin at a time, so destinations chunk at 625.
	matrixMaxElements = 625

	// Pairs the provider cannot route get a large penalty so downstream
	// heuristics avoid them instead of failing the plan.
	unroutablePenaltySeconds = 6 * 60 * 60
)

// GoogleRoutesEstimator implements TravelMatrixEstimator using the Google
// Routes computeRouteMatrix endpoint.
//
// It coordinates:
//   - Persistent travel-result caching (optional)
//   - Chunked matrix calls within the API element limit
//   - Request pacing and retry/backoff on transient failures
//
// The estimator is safe for concurrent use.
type GoogleRoutesEstimator struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	limiter     *rate.Limiter
	travelCache ports.TravelCache
	log         zerolog.Logger
}

func NewGoogleRoutesEstimator(apiKey string, travelCache ports.TravelCache, log zerolog.Logger) (*GoogleRoutesEstimator, error) {
	if apiKey == "" {
		return nil, errors.New("google routes api key is empty")
	}

	return &GoogleRoutesEstimator{
		session:     &http.Client{Timeout: 60 * time.Second},
		apiKey:      apiKey,
		baseURL:     "https://routes.googleapis.com",
		limiter:     rate.NewLimiter(rate.Limit(5), 5),
		travelCache: travelCache,
		log:         log,
	}, nil
}

// PointKey renders a coordinate as a stable cache key, rounded to five
// decimals (~1m) so float noise does not defeat the cache.
func PointKey(c domain.Coordinates) string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Delegate to the matrix path to reuse caching and chunking.
func (g *GoogleRoutesEstimator) Travel(ctx context.Context, from, to domain.Coordinates) (ports.TravelResult, error) {
	rows, err := g.TravelMatrix(ctx, []domain.Coordinates{from, to})
	if err != nil {
		return ports.TravelResult{}, fmt.Errorf("travel %s -> %s: %w", PointKey(from), PointKey(to), err)
	}
	return rows[0][1], nil
}

// TravelMatrix returns the full NxN travel table for the given points.
// Cached pairs are served locally; only misses reach the API, row by row.
func (g *GoogleRoutesEstimator) TravelMatrix(ctx context.Context, points []domain.Coordinates) (_ [][]ports.TravelResult, err error) {
	defer obs.Time(ctx, g.log, "google.TravelMatrix")(&err)

	n := len(points)
	keys := make([]string, n)
	for i, p := range points {
		keys[i] = PointKey(p)
	}

	m := make([][]ports.TravelResult, n)
	for i := range m {
		m[i] = make([]ports.TravelResult, n)
	}

	for i := 0; i < n; i++ {
		destIdx := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				destIdx = append(destIdx, j)
			}
		}
		if len(destIdx) == 0 {
			continue
		}

		hits := map[string]ports.TravelResult{}
		if g.travelCache != nil {
			destKeys := make([]string, 0, len(destIdx))
			for _, j := range destIdx {
				destKeys = append(destKeys, keys[j])
			}
			hits, err = g.travelCache.GetMany(ctx, keys[i], destKeys)
			if err != nil {
				return nil, fmt.Errorf("travel cache get: %w", err)
			}
		}

		missIdx := make([]int, 0, len(destIdx))
		for _, j := range destIdx {
			if r, ok := hits[keys[j]]; ok {
				m[i][j] = r
			} else {
				missIdx = append(missIdx, j)
			}
		}
		if len(missIdx) == 0 {
			continue
		}

		fresh, err := g.fetchMatrixRow(ctx, points[i], points, missIdx)
		if err != nil {
			return nil, fmt.Errorf("fetch matrix row %d: %w", i, err)
		}
		for j, r := range fresh {
			m[i][j] = r
		}

		if g.travelCache != nil {
			put := make(map[string]ports.TravelResult, len(fresh))
			for j, r := range fresh {
				put[keys[j]] = r
			}
			if err := g.travelCache.PutMany(ctx, keys[i], put); err != nil {
				g.log.Warn().Err(err).Msg("travel cache write failed")
			}
		}
	}

	return m, nil
}

type routesWaypoint struct {
	Waypoint struct {
		Location struct {
			LatLng struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"latLng"`
		} `json:"location"`
	} `json:"waypoint"`
}

type routeMatrixRequest struct {
	Origins           []routesWaypoint `json:"origins"`
	Destinations      []routesWaypoint `json:"destinations"`
	TravelMode        string           `json:"travelMode"`
	RoutingPreference string           `json:"routingPreference"`
}

type routeMatrixElement struct {
	OriginIndex      *int   `json:"originIndex"`
	DestinationIndex *int   `json:"destinationIndex"`
	DistanceMeters   int    `json:"distanceMeters"`
	Duration         string `json:"duration"`
	Condition        string `json:"condition"`
}

func waypointFor(c domain.Coordinates) routesWaypoint {
	var w routesWaypoint
	w.Waypoint.Location.LatLng.Latitude = c.Lat
	w.Waypoint.Location.LatLng.Longitude = c.Lon
	return w
}

// fetchMatrixRow retrieves travel results from one origin to the destination
// indices, chunked to stay within the API element limit.
func (g *GoogleRoutesEstimator) fetchMatrixRow(
	ctx context.Context,
	origin domain.Coordinates,
	points []domain.Coordinates,
	destIdx []int,
) (map[int]ports.TravelResult, error) {
	out := make(map[int]ports.TravelResult, len(destIdx))

	for start := 0; start < len(destIdx); start += matrixMaxElements {
		end := start + matrixMaxElements
		if end > len(destIdx) {
			end = len(destIdx)
		}
		chunk := destIdx[start:end]

		if err := g.fetchChunk(ctx, origin, points, chunk, out); err != nil {
			return nil, err
		}
	}

	for _, j := range destIdx {
		if _, ok := out[j]; !ok {
			// The API omitted the element; treat the pair as unroutable.
			out[j] = ports.TravelResult{DurationSeconds: unroutablePenaltySeconds}
		}
	}

	return out, nil
}

func (g *GoogleRoutesEstimator) fetchChunk(
	ctx context.Context,
	origin domain.Coordinates,
	points []domain.Coordinates,
	chunk []int,
	out map[int]ports.TravelResult,
) error {
	body := routeMatrixRequest{
		Origins:           []routesWaypoint{waypointFor(origin)},
		Destinations:      make([]routesWaypoint, 0, len(chunk)),
		TravelMode:        "DRIVE",
		RoutingPreference: "TRAFFIC_AWARE",
	}
	for _, j := range chunk {
		body.Destinations = append(body.Destinations, waypointFor(points[j]))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal matrix request: %w", err)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := g.baseURL + "/distanceMatrix/v2:computeRouteMatrix"
	resp, err := doWithRetry(ctx, g.session, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", g.apiKey)
		req.Header.Set("X-Goog-FieldMask", "originIndex,destinationIndex,duration,distanceMeters,condition")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var elements []routeMatrixElement
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return fmt.Errorf("decode matrix response: %w", err)
	}

	for _, el := range elements {
		if el.OriginIndex == nil || el.DestinationIndex == nil {
			continue
		}
		di := *el.DestinationIndex
		if di < 0 || di >= len(chunk) {
			continue
		}
		j := chunk[di]

		seconds, ok := parseDurationSeconds(el.Duration)
		if !ok || el.Condition == "ROUTE_NOT_FOUND" {
			out[j] = ports.TravelResult{DurationSeconds: unroutablePenaltySeconds}
			continue
		}
		out[j] = ports.TravelResult{
			DistanceMeters:  el.DistanceMeters,
			DurationSeconds: seconds,
		}
	}

	return nil
}

// parseDurationSeconds decodes the API's "123s" duration strings.
func parseDurationSeconds(d string) (int, bool) {
	if !strings.HasSuffix(d, "s") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(d, "s"), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
