package hydromet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/observability"
)

// Endpoint paths under /api/ on the hydromet site.
const (
	lakeLevelsEndpoint = "FloodStatus/GetLakeLevelsGateOps"
	forecastEndpoint   = "GetForecastReferences"
	narrativeEndpoint  = "FloodStatus/GetNarrativeSummary"
)

// Client fetches flood status payloads from the LCRA hydromet API. Responses
// are decoded into generic maps because the feed mixes value types per field;
// typing happens downstream in the domain assemblers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a hydromet API client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// LakeLevelsGateOps fetches the combined lake levels / gate operations rows.
func (c *Client) LakeLevelsGateOps(ctx context.Context) ([]map[string]any, error) {
	var payload struct {
		Records []map[string]any `json:"records"`
	}
	if err := c.get(ctx, lakeLevelsEndpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Records, nil
}

// ForecastReferences fetches the river gauge site rows.
func (c *Client) ForecastReferences(ctx context.Context) ([]map[string]any, error) {
	var payload struct {
		Sites []map[string]any `json:"sites"`
	}
	if err := c.get(ctx, forecastEndpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Sites, nil
}

// NarrativeSummary fetches the operations narrative. The endpoint returns a
// top-level array; the first element holds the current narrative.
func (c *Client) NarrativeSummary(ctx context.Context) ([]map[string]any, error) {
	var payload []map[string]any
	if err := c.get(ctx, narrativeEndpoint, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) get(ctx context.Context, endpoint string, into any) error {
	u := fmt.Sprintf("%s/api/%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ScrapeDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ScrapeRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ScrapeRequests.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("hydromet API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		c.metrics.ScrapeRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.metrics.ScrapeRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}
