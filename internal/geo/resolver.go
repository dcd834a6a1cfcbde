// Package geo turns best-effort client position signals into a single
// coordinate.
package geo

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"store-feedback/internal/models"

	"github.com/golang/geo/s2"
)

// Edge headers injected by Cloudflare.
const (
	HeaderLatitude  = "cf-iplatitude"
	HeaderLongitude = "cf-iplongitude"
	HeaderCity      = "cf-ipcity"
	HeaderRegion    = "cf-ipregion"
)

// GPS request options handed to the browser.
const (
	GPSTimeoutMillis = 10000
	GPSMaximumAge    = 0
)

// Result is what the geolocation endpoint returns.
type Result struct {
	Lat    float64               `json:"lat"`
	Lng    float64               `json:"lng"`
	City   string                `json:"city,omitempty"`
	Region string                `json:"region,omitempty"`
	Source models.LocationSource `json:"source"`
}

func (r Result) Point() models.Coordinate {
	return models.Coordinate{Lat: r.Lat, Lng: r.Lng}
}

// DefaultFallback is San Francisco, used when no edge signal is present.
var DefaultFallback = Result{
	Lat:    37.7749,
	Lng:    -122.4194,
	City:   "San Francisco",
	Region: "CA",
	Source: models.SourceIP,
}

type Resolver struct {
	Fallback Result
}

func NewResolver(fallback Result) *Resolver {
	fallback.Source = models.SourceIP
	return &Resolver{Fallback: fallback}
}

// Resolve never fails: headers that are missing or invalid yield the fallback.
// ok reports whether the edge headers were used.
func (r *Resolver) Resolve(h http.Header) (res Result, ok bool) {
	if res, ok := fromHeaders(h); ok {
		return res, true
	}
	return r.Fallback, false
}

func fromHeaders(h http.Header) (Result, bool) {
	lat, ok := parseDegrees(h.Get(HeaderLatitude))
	if !ok {
		return Result{}, false
	}
	lng, ok := parseDegrees(h.Get(HeaderLongitude))
	if !ok {
		return Result{}, false
	}
	if !Valid(models.Coordinate{Lat: lat, Lng: lng}) {
		return Result{}, false
	}
	return Result{
		Lat:    lat,
		Lng:    lng,
		City:   strings.TrimSpace(h.Get(HeaderCity)),
		Region: strings.TrimSpace(h.Get(HeaderRegion)),
		Source: models.SourceIP,
	}, true
}

func parseDegrees(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Valid reports whether c is a finite latitude/longitude pair in range.
func Valid(c models.Coordinate) bool {
	for _, v := range []float64{c.Lat, c.Lng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s2.LatLngFromDegrees(c.Lat, c.Lng).IsValid()
}
