package krms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json;charset=utf-8", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin", body["user"])
		assert.Equal(t, "pass", body["password"])
		assert.Equal(t, "key1", body["clientKey"])

		w.Write([]byte(`{"code":"success","token":"tok-123"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin", "pass", "key1")
	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "tok-123", client.token)
}

func TestAuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"invalid_credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin", "wrong", "key1")
	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_credentials")
	assert.Empty(t, client.token)
}

func TestDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			w.Write([]byte(`{"code":"success","token":"tok-123"}`))
		case "/api/v1/devices/connects/page":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 1, body["page"])
			assert.NotNil(t, body["keyword"])

			w.Write([]byte(`{"data":[
				{"device_id":"D1","locationIp":"41.0.0.1","syncTime":1700000000},
				{"device_id":"D2","retailer":"ACME"}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin", "pass", "key1")
	require.NoError(t, client.Authenticate(context.Background()))

	devices, err := client.Devices(context.Background(), 1, 100, []string{"syncTime DESC"})
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "D1", devices[0].ID())
	assert.Equal(t, "41.0.0.1", devices[0].LocationIP())
	assert.Equal(t, "1700000000", devices[0].String("syncTime"))
	assert.Equal(t, "ACME", devices[1].Retailer())
}

func TestDevicesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin", "pass", "key1")
	_, err := client.Devices(context.Background(), 1, 100, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
