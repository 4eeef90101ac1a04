// Package oic is the client for the Oracle Integration Cloud REST APIs this
// gateway fronts. It owns OAuth2 client-credential token handling and HTTP
// retries; callers just issue GETs and receive decoded JSON.
package oic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Config carries everything needed to reach an OIC tenant.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	Timeout      time.Duration
	MaxRetries   int
}

// APIError is a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, body)
}

// Client issues authenticated GETs against one OIC tenant. It is safe for
// concurrent use; the underlying oauth2 transport caches the access token
// and refreshes it before expiry.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client. The retrying HTTP client handles transient
// upstream failures; the oauth2 client-credentials source wraps it so token
// requests retry the same way.
func NewClient(cfg Config) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.MaxRetries
	retry.Logger = nil
	if cfg.Timeout > 0 {
		retry.HTTPClient.Timeout = cfg.Timeout
	}
	base := retry.StandardClient()

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	if cfg.Scope != "" {
		cc.Scopes = []string{cfg.Scope}
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cc.Client(tokenCtx),
	}
}

// Get issues one authenticated GET. JSON responses are decoded into generic
// values; anything else comes back as a raw string.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var value any
		if err := json.Unmarshal(body, &value); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return value, nil
	}
	return string(body), nil
}

// getWithFallback retries a 404 against an alternate path. Some tenants
// expose the same resource under different API families.
func (c *Client) getWithFallback(ctx context.Context, primary, fallback string, params url.Values) (any, error) {
	out, err := c.Get(ctx, primary, params)
	var apiErr *APIError
	if err != nil && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return c.Get(ctx, fallback, params)
	}
	return out, err
}

func pageParams(limit, page int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}

// ListIntegrations lists design-time integrations. onlyActivated narrows to
// activated ones when non-nil.
func (c *Client) ListIntegrations(ctx context.Context, onlyActivated *bool, limit, page int) (any, error) {
	params := pageParams(limit, page)
	if onlyActivated != nil {
		params.Set("onlyActivated", strconv.FormatBool(*onlyActivated))
	}
	return c.Get(ctx, "/ic/api/integration/v1/integrations", params)
}

// GetIntegration fetches one integration version's design document.
func (c *Client) GetIntegration(ctx context.Context, identifier, version string) (any, error) {
	path := fmt.Sprintf("/ic/api/integration/v1/integrations/%s/versions/%s",
		url.PathEscape(identifier), url.PathEscape(version))
	return c.Get(ctx, path, nil)
}

// ListPackages lists packages. Some tenants expose packages under the
// integration API family, others under design.
func (c *Client) ListPackages(ctx context.Context, limit int) (any, error) {
	params := pageParams(limit, 0)
	return c.getWithFallback(ctx,
		"/ic/api/integration/v1/packages",
		"/ic/api/design/v1/packages", params)
}

// GetPackage fetches one package by name.
func (c *Client) GetPackage(ctx context.Context, name string) (any, error) {
	escaped := url.PathEscape(name)
	return c.getWithFallback(ctx,
		"/ic/api/integration/v1/packages/"+escaped,
		"/ic/api/design/v1/packages/"+escaped, nil)
}

// ListConnections lists connections.
func (c *Client) ListConnections(ctx context.Context, limit int) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/connections", pageParams(limit, 0))
}

// GetConnection fetches one connection by identifier.
func (c *Client) GetConnection(ctx context.Context, identifier string) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/connections/"+url.PathEscape(identifier), nil)
}

// ListSchedules lists schedules.
func (c *Client) ListSchedules(ctx context.Context, limit int) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/schedules", pageParams(limit, 0))
}

// ListLookups lists lookups.
func (c *Client) ListLookups(ctx context.Context, limit int) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/lookups", pageParams(limit, 0))
}

// ListAdapters lists available adapters.
func (c *Client) ListAdapters(ctx context.Context) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/adapters", nil)
}

// ListAgents lists connectivity agents.
func (c *Client) ListAgents(ctx context.Context) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/agents", nil)
}

// ListAgentGroups lists connectivity agent groups.
func (c *Client) ListAgentGroups(ctx context.Context) (any, error) {
	return c.Get(ctx, "/ic/api/integration/v1/agentgroups", nil)
}

// InstanceFilter narrows a runtime instance listing.
type InstanceFilter struct {
	IntegrationID string
	Status        string
	StartTime     string
	EndTime       string
	Limit         int
}

// ListInstances lists runtime instances. The monitoring API moved between
// families; try both.
func (c *Client) ListInstances(ctx context.Context, filter InstanceFilter) (any, error) {
	params := url.Values{}
	if filter.IntegrationID != "" {
		params.Set("integrationId", filter.IntegrationID)
	}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.StartTime != "" {
		params.Set("startTime", filter.StartTime)
	}
	if filter.EndTime != "" {
		params.Set("endTime", filter.EndTime)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	return c.getWithFallback(ctx,
		"/ic/api/integration/v1/monitoring/instances",
		"/ic/api/monitoring/v1/instances", params)
}

// GetInstance fetches one runtime instance by id.
func (c *Client) GetInstance(ctx context.Context, instanceID string) (any, error) {
	escaped := url.PathEscape(instanceID)
	return c.getWithFallback(ctx,
		"/ic/api/integration/v1/monitoring/instances/"+escaped,
		"/ic/api/monitoring/v1/instances/"+escaped, nil)
}

// ListErrors lists errored instances.
func (c *Client) ListErrors(ctx context.Context, integrationID string, limit int) (any, error) {
	params := url.Values{}
	if integrationID != "" {
		params.Set("integrationId", integrationID)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.getWithFallback(ctx,
		"/ic/api/integration/v1/monitoring/errors",
		"/ic/api/monitoring/v1/errors", params)
}

// ListMetrics lists monitoring metrics by name and optional time range.
func (c *Client) ListMetrics(ctx context.Context, metric, startTime, endTime string) (any, error) {
	params := url.Values{}
	params.Set("metric", metric)
	if startTime != "" {
		params.Set("startTime", startTime)
	}
	if endTime != "" {
		params.Set("endTime", endTime)
	}
	return c.getWithFallback(ctx,
		"/ic/api/integration/v1/monitoring/metrics",
		"/ic/api/monitoring/v1/metrics", params)
}
