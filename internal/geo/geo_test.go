package geo

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"store-feedback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestResolveWithoutHeadersFallsBack(t *testing.T) {
	r := NewResolver(DefaultFallback)
	res, ok := r.Resolve(http.Header{})
	assert.False(t, ok)
	assert.Equal(t, DefaultFallback, res)
	assert.Equal(t, models.SourceIP, res.Source)
}

func TestResolveUsesEdgeHeaders(t *testing.T) {
	r := NewResolver(DefaultFallback)
	res, ok := r.Resolve(headers(
		HeaderLatitude, "39.7392",
		HeaderLongitude, "-104.9903",
		HeaderCity, "Denver",
		HeaderRegion, "Colorado",
	))
	require.True(t, ok)
	assert.Equal(t, Result{Lat: 39.7392, Lng: -104.9903, City: "Denver", Region: "Colorado", Source: models.SourceIP}, res)
}

func TestResolveCityOptional(t *testing.T) {
	r := NewResolver(DefaultFallback)
	res, ok := r.Resolve(headers(HeaderLatitude, "1.5", HeaderLongitude, "2.5"))
	require.True(t, ok)
	assert.Empty(t, res.City)
	assert.Empty(t, res.Region)
}

func TestResolveInvalidHeadersFallBack(t *testing.T) {
	r := NewResolver(DefaultFallback)
	cases := []http.Header{
		headers(HeaderLatitude, "39.7"),
		headers(HeaderLongitude, "-104.9"),
		headers(HeaderLatitude, "abc", HeaderLongitude, "-104.9"),
		headers(HeaderLatitude, "NaN", HeaderLongitude, "-104.9"),
		headers(HeaderLatitude, "39.7", HeaderLongitude, "Inf"),
		headers(HeaderLatitude, "91", HeaderLongitude, "0"),
		headers(HeaderLatitude, "0", HeaderLongitude, "181"),
	}
	for _, h := range cases {
		res, ok := r.Resolve(h)
		assert.False(t, ok, "headers %v", h)
		assert.Equal(t, DefaultFallback, res)
	}
}

func TestNewResolverForcesIPSource(t *testing.T) {
	r := NewResolver(Result{Lat: 1, Lng: 2, City: "X", Source: models.SourceManual})
	res, _ := r.Resolve(http.Header{})
	assert.Equal(t, models.SourceIP, res.Source)
	assert.Equal(t, "X", res.City)
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/geolocate", r.URL.Path)
		_ = json.NewEncoder(w).Encode(DefaultFallback)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL + "/").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultFallback, res)
}

func TestClientGetErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background())
	assert.ErrorIs(t, err, ErrLookup)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer bad.Close()

	_, err = NewClient(bad.URL).Get(context.Background())
	assert.ErrorIs(t, err, ErrLookup)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(models.Coordinate{Lat: 89.99, Lng: -179.99}))
	assert.True(t, Valid(models.Coordinate{Lat: -33.86, Lng: 151.2}))
	assert.False(t, Valid(models.Coordinate{Lat: 90.01, Lng: 0}))
	assert.False(t, Valid(models.Coordinate{Lat: 0, Lng: -180.5}))
	assert.False(t, Valid(models.Coordinate{Lat: math.NaN(), Lng: 0}))
}
