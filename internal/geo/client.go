// Package geo resolves device IPs to geolocation records under a
// durable write-through cache.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/user/fleetwatch/internal/model"
)

// Client fetches geolocation data from an ipinfo-style HTTP service.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a geolocation client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Lookup resolves a single IP address. A service-level error payload
// is returned as a GeoRecord with its Error field set, not as an
// error; only transport and HTTP failures are errors.
func (c *Client) Lookup(ctx context.Context, ip string) (*model.GeoRecord, error) {
	url := fmt.Sprintf("%s/%s?token=%s", c.baseURL, ip, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "fleetwatch/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch geo data for %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo API returned status %d for %s", resp.StatusCode, ip)
	}

	var payload struct {
		Region  string `json:"region"`
		City    string `json:"city"`
		Country string `json:"country"`
		Loc     string `json:"loc"`
		Bogon   bool   `json:"bogon"`
		Error   *struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geo response for %s: %w", ip, err)
	}

	rec := &model.GeoRecord{IP: ip}

	switch {
	case payload.Error != nil:
		rec.Error = strings.TrimSpace(payload.Error.Title + ": " + payload.Error.Message)
	case payload.Bogon:
		rec.Error = "bogon address"
	default:
		rec.Region = payload.Region
		rec.City = payload.City
		rec.Country = payload.Country
		rec.Latitude, rec.Longitude = parseLoc(payload.Loc)
	}

	return rec, nil
}

// parseLoc splits a combined "lat,long" value, defaulting to 0,0 when
// absent or malformed.
func parseLoc(loc string) (float64, float64) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0
	}

	return lat, lon
}
