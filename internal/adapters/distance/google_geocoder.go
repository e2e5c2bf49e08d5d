package distance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"context"

	"github.com/rs/zerolog"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/platform/obs"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

// GoogleGeocoder implements the Geocoder port using the Google Geocoding
// API, with an optional persistent cache in front of it.
type GoogleGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	cache   ports.GeocodeCache
	log     zerolog.Logger
}

func NewGoogleGeocoder(apiKey string, cache ports.GeocodeCache, log zerolog.Logger) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google geocoding api key is empty")
	}

	return &GoogleGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com",
		cache:   cache,
		log:     log,
	}, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, g.log, "google.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{norm})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("geocode cache: %w", err)
		}
		if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	endpoint := g.baseURL + "/maps/api/geocode/json"
	resp, err := doWithRetry(ctx, g.session, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		q := url.Values{}
		q.Set("address", norm)
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if decoded.Status == "ZERO_RESULTS" || len(decoded.Results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%q: %w", address, ports.ErrAddressNotFound)
	}
	if decoded.Status != "OK" {
		return domain.Coordinates{}, fmt.Errorf("geocode status %q for %q", decoded.Status, address)
	}

	loc := decoded.Results[0].Geometry.Location
	coords := domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}

	if g.cache != nil {
		if err := g.cache.PutMany(ctx, map[string]domain.Coordinates{norm: coords}); err != nil {
			g.log.Warn().Err(err).Msg("geocode cache write failed")
		}
	}

	return coords, nil
}
