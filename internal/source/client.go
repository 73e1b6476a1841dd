// Package source fetches the current advisory status from the upstream
// XML feed.
package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

// Client fetches the advisory status document over HTTP. It performs no
// retries; retry cadence belongs to the trigger schedule.
type Client struct {
	httpClient *http.Client
	url        string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a status feed client with a bounded request timeout.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:     url,
		metrics: metrics,
		logger:  logger,
	}
}

// statusDoc matches the upstream document; only the <status> child matters.
type statusDoc struct {
	Status string `xml:"status"`
}

// Fetch performs one GET against the feed and returns the status code
// normalized to uppercase. Failures are typed: SourceNetwork for
// transport/HTTP errors, SourceMalformed for bad or incomplete XML.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	start := time.Now()
	defer func() {
		c.metrics.SourceFetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", &domain.SourceError{Kind: domain.SourceNetwork, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.SourceError{Kind: domain.SourceNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.SourceError{
			Kind: domain.SourceNetwork,
			Err:  fmt.Errorf("feed returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.SourceError{Kind: domain.SourceNetwork, Err: fmt.Errorf("read body: %w", err)}
	}

	var doc statusDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", &domain.SourceError{Kind: domain.SourceMalformed, Err: fmt.Errorf("parse feed: %w", err)}
	}

	code := domain.NormalizeCode(doc.Status)
	if code == "" {
		return "", &domain.SourceError{
			Kind: domain.SourceMalformed,
			Err:  fmt.Errorf("status element missing or empty"),
		}
	}

	c.logger.Debug("fetched upstream status", "status", code)
	return code, nil
}
