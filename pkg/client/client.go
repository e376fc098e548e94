// Package client is a Go client for the inventory HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/enterprise-insights/gh-inventory/internal/domain"
)

// Client talks to a running inventory API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type organizationsResponse struct {
	Organizations []*domain.Organization `json:"organizations"`
	Count         int                    `json:"count"`
}

type repositoriesResponse struct {
	Organization string               `json:"organization"`
	Repositories []*domain.Repository `json:"repositories"`
	Count        int                  `json:"count"`
}

type runsResponse struct {
	Runs  []*domain.Run `json:"runs"`
	Count int           `json:"count"`
}

// Organizations fetches every organization in the inventory.
func (c *Client) Organizations(ctx context.Context) ([]*domain.Organization, error) {
	var out organizationsResponse
	if err := c.get(ctx, "/api/v1/orgs", &out); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}

// Repositories fetches the repositories of one organization.
func (c *Client) Repositories(ctx context.Context, org string) ([]*domain.Repository, error) {
	var out repositoriesResponse
	path := "/api/v1/orgs/" + url.PathEscape(org) + "/repos"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Repositories, nil
}

// Runs fetches recent collection runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]*domain.Run, error) {
	path := "/api/v1/runs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out runsResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

// Health reports whether the API is up.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]string
	return c.get(ctx, "/health", &out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
