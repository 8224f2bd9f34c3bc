// Package krms is the client for the KRMS device inventory API.
package krms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/util"
)

const userAgent = "Mozilla/5.0"

// Client talks to the inventory API. Authenticate must succeed before
// any data call; a failed fetch aborts the run before the pipeline
// starts.
type Client struct {
	baseURL   string
	username  string
	password  string
	clientKey string
	token     string
	client    *http.Client
}

// NewClient creates an inventory API client.
func NewClient(baseURL, username, password, clientKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		username:  username,
		password:  password,
		clientKey: clientKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Authenticate requests an API token and stores it for later calls.
func (c *Client) Authenticate(ctx context.Context) error {
	body := map[string]string{
		"user":      c.username,
		"password":  c.password,
		"clientKey": c.clientKey,
	}

	var resp struct {
		Code  string `json:"code"`
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/v1/token", body, &resp); err != nil {
		return fmt.Errorf("failed to request token: %w", err)
	}

	if resp.Code != "success" {
		return fmt.Errorf("token request rejected with code %q", resp.Code)
	}

	c.token = resp.Token
	util.Info("Token received successfully")

	return nil
}

// Profile fetches the authenticated account's profile.
func (c *Client) Profile(ctx context.Context) (map[string]any, error) {
	var profile map[string]any
	if err := c.get(ctx, "/auth/v1/profile", &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}

// User fetches the authenticated IAMS user record.
func (c *Client) User(ctx context.Context) (map[string]any, error) {
	var user map[string]any
	if err := c.get(ctx, "/api/v1/iams/user", &user); err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// Devices fetches one page of the device inventory.
func (c *Client) Devices(ctx context.Context, page, limit int, orders []string) ([]*model.DeviceRecord, error) {
	if orders == nil {
		orders = []string{}
	}
	body := map[string]any{
		"page":    page,
		"limit":   limit,
		"keyword": map[string]any{},
		"orders":  orders,
	}

	var resp struct {
		Data []*model.DeviceRecord `json:"data"`
	}
	if err := c.post(ctx, "/api/v1/devices/connects/page", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch devices: %w", err)
	}

	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return nil
}
