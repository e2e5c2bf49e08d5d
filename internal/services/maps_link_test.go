package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapsDirectionsURL(t *testing.T) {
	link := MapsDirectionsURL("100 Depot Way, Phoenix, AZ", []string{
		"1901 W Madison St, Phoenix, AZ",
		"822 E Union Hills Dr, Phoenix, AZ",
	})

	require.True(t, strings.HasPrefix(link, "https://www.google.com/maps/dir/?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "1", q.Get("api"))
	assert.Equal(t, "100 Depot Way, Phoenix, AZ", q.Get("origin"))
	assert.Equal(t, "100 Depot Way, Phoenix, AZ", q.Get("destination"))
	assert.Equal(t, "driving", q.Get("travelmode"))
	assert.Equal(t, "1901 W Madison St, Phoenix, AZ|822 E Union Hills Dr, Phoenix, AZ", q.Get("waypoints"))
}

func TestMapsDirectionsURLNoWaypointsParamWhenEmpty(t *testing.T) {
	link := MapsDirectionsURL("100 Depot Way", nil)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.False(t, parsed.Query().Has("waypoints"))
}

func TestMapsDirectionsURLPreservesStopOrder(t *testing.T) {
	link := MapsDirectionsURL("Depot", []string{"First", "Second", "Third"})

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "First|Second|Third", parsed.Query().Get("waypoints"))
}
