package services

import (
	"net/url"
	"strings"
)

// MapsDirectionsURL formats a single Google Maps directions link for a
// finished route: origin and destination are the depot, the ordered stops are
// intermediate waypoints. Waypoint order must survive as sequenced, so the
// link never asks the target to re-optimize. No network call is made here.
func MapsDirectionsURL(depot string, orderedStops []string) string {
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", depot)
	params.Set("destination", depot)
	params.Set("travelmode", "driving")
	if len(orderedStops) > 0 {
		params.Set("waypoints", strings.Join(orderedStops, "|"))
	}

	return "https://www.google.com/maps/dir/?" + params.Encode()
}
