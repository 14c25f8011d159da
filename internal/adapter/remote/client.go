// Package remote implements domain.HubSource against a hub directory HTTP API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

// Client reads hubs and alerts from a remote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a remote hub source rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListHubs issues GET {base}/hubs with the query encoded as parameters.
func (c *Client) ListHubs(ctx context.Context, q domain.Query) ([]domain.Hub, error) {
	u := c.baseURL + "/hubs"
	if params := q.Params(); len(params) > 0 {
		u += "?" + params.Encode()
	}
	var hubs []domain.Hub
	if err := c.get(ctx, u, &hubs); err != nil {
		return nil, err
	}
	return hubs, nil
}

// GetHub issues GET {base}/hubs/{id}. A 404 maps to domain.ErrNotFound.
func (c *Client) GetHub(ctx context.Context, id string) (domain.Hub, error) {
	var hub domain.Hub
	if err := c.get(ctx, c.baseURL+"/hubs/"+url.PathEscape(id), &hub); err != nil {
		return domain.Hub{}, err
	}
	return hub, nil
}

// ListAlerts issues GET {base}/alerts.
func (c *Client) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	if err := c.get(ctx, c.baseURL+"/alerts", &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// get fetches fullURL and decodes the payload into out. The API may answer
// with a bare payload or with an envelope carrying it under "data".
func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && strings.Contains(req.URL.Path, "/hubs/") {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("hub API request failed", "url", req.URL.Path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrSourceUnavailable, err)
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal(body, &env) == nil && len(env.Data) > 0 {
		body = env.Data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrSourceUnavailable, err)
	}
	return nil
}
