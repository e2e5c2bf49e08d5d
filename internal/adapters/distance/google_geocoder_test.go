package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
	"github.com/loadlogic/fleet-route-planner/internal/ports"
)

func geocoderAgainst(srv *httptest.Server, cache ports.GeocodeCache) *GoogleGeocoder {
	return &GoogleGeocoder{
		session: srv.Client(),
		apiKey:  "test-key",
		baseURL: srv.URL,
		cache:   cache,
		log:     zerolog.Nop(),
	}
}

func TestGoogleGeocoderResolvesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "1901 W Madison St, Phoenix, AZ" {
			t.Errorf("address param = %q", got)
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":33.446,"lng":-112.085}}}]}`)
	}))
	defer srv.Close()

	g := geocoderAgainst(srv, nil)
	coords, err := g.Geocode(context.Background(), "  1901 W Madison St,   Phoenix, AZ ")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}

	want := domain.Coordinates{Lat: 33.446, Lon: -112.085}
	if coords != want {
		t.Fatalf("coords = %+v, want %+v", coords, want)
	}
}

func TestGoogleGeocoderZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer srv.Close()

	g := geocoderAgainst(srv, nil)
	_, err := g.Geocode(context.Background(), "1 Nowhere Ln, Atlantis")

	if !errors.Is(err, ports.ErrAddressNotFound) {
		t.Fatalf("err = %v, want ErrAddressNotFound", err)
	}
}

func TestGoogleGeocoderUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","results":[]}`)
	}))
	defer srv.Close()

	g := geocoderAgainst(srv, nil)
	_, err := g.Geocode(context.Background(), "A St")

	if err == nil {
		t.Fatal("want error for REQUEST_DENIED")
	}
	if errors.Is(err, ports.ErrAddressNotFound) {
		t.Fatal("REQUEST_DENIED must not read as not-found")
	}
}

func TestGoogleGeocoderEmptyAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty address must not reach the API")
	}))
	defer srv.Close()

	g := geocoderAgainst(srv, nil)
	if _, err := g.Geocode(context.Background(), "   "); err == nil {
		t.Fatal("want error for empty address")
	}
}

func TestDoWithRetryRecoversFromTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := doWithRetry(context.Background(), srv.Client(), func() (*http.Request, error) {
		return http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	})
	if err != nil {
		t.Fatalf("doWithRetry: %v", err)
	}
	resp.Body.Close()

	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := doWithRetry(context.Background(), srv.Client(), func() (*http.Request, error) {
		return http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	})

	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 status error", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", got)
	}
}
