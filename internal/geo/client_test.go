package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/41.0.0.1", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"41.0.0.1","region":"Gauteng","city":"Johannesburg","country":"ZA","loc":"-26.2041,28.0473"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")

	rec, err := client.Lookup(context.Background(), "41.0.0.1")
	require.NoError(t, err)

	assert.True(t, rec.Valid())
	assert.Equal(t, "41.0.0.1", rec.IP)
	assert.Equal(t, "Gauteng", rec.Region)
	assert.Equal(t, "Johannesburg", rec.City)
	assert.Equal(t, "ZA", rec.Country)
	assert.InDelta(t, -26.2041, rec.Latitude, 1e-9)
	assert.InDelta(t, 28.0473, rec.Longitude, 1e-9)
}

func TestClientLookupErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"title":"Wrong ip","message":"Please provide a valid IP address"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")

	rec, err := client.Lookup(context.Background(), "not-an-ip")
	require.NoError(t, err)

	assert.False(t, rec.Valid())
	assert.Contains(t, rec.Error, "Wrong ip")
}

func TestClientLookupBogon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"10.0.0.1","bogon":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")

	rec, err := client.Lookup(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, rec.Valid())
}

func TestClientLookupHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")

	_, err := client.Lookup(context.Background(), "41.0.0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestParseLoc(t *testing.T) {
	cases := []struct {
		loc      string
		lat, lon float64
	}{
		{"-26.2041,28.0473", -26.2041, 28.0473},
		{" -26.2 , 28.0 ", -26.2, 28.0},
		{"", 0, 0},
		{"garbage", 0, 0},
		{"1,notanumber", 0, 0},
	}

	for _, tc := range cases {
		lat, lon := parseLoc(tc.loc)
		assert.Equal(t, tc.lat, lat, "loc %q", tc.loc)
		assert.Equal(t, tc.lon, lon, "loc %q", tc.loc)
	}
}
