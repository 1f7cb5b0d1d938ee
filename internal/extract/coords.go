package extract

import (
	"net/url"
	"strings"
)

// noGPSMarker appears in the map link of a memorial without coordinates;
// the link then points at the site's GPS editor instead of a map.
const noGPSMarker = "edit#"

// ParseCoordinates reads latitude and longitude from the q=<lat>,<long>
// parameter of a map link. Both are empty when the link is missing, has no
// q parameter or carries the no-GPS marker. Values are returned as written.
func ParseCoordinates(mapURL string) (lat, long string) {
	if mapURL == "" || strings.Contains(mapURL, noGPSMarker) {
		return "", ""
	}

	var q string
	if u, err := url.Parse(mapURL); err == nil {
		q = u.Query().Get("q")
	}
	if q == "" {
		return "", ""
	}

	lat, long, ok := strings.Cut(q, ",")
	if !ok {
		return "", ""
	}
	return strings.TrimSpace(lat), strings.TrimSpace(long)
}

// HasCoordinates reports whether a map link carries usable coordinates.
func HasCoordinates(mapURL string) bool {
	lat, long := ParseCoordinates(mapURL)
	return lat != "" || long != ""
}
