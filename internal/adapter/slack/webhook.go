// Package slack talks to Slack: incoming-webhook message delivery and the
// OAuth exchange that produces new subscriber registrations.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

const authorName = "French Toast Alert System"

// Attachment is the Slack attachment envelope for one advisory message.
type Attachment struct {
	Color      string `json:"color"`
	AuthorName string `json:"author_name"`
	AuthorLink string `json:"author_link"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	ThumbURL   string `json:"thumb_url"`
	Timestamp  int64  `json:"ts"`
}

// Message is the JSON body posted to a subscriber's webhook URL.
type Message struct {
	Attachments []Attachment `json:"attachments"`
}

// NewAlertMessage builds the message for a level at a given status
// generation. ts is the status's updated timestamp, not the send time.
func NewAlertMessage(level domain.Level, ts time.Time, authorLink string) Message {
	return Message{
		Attachments: []Attachment{{
			Color:      level.Color,
			AuthorName: authorName,
			AuthorLink: authorLink,
			Title:      level.Title,
			Text:       level.Text,
			ThumbURL:   level.ImageURL,
			Timestamp:  ts.Unix(),
		}},
	}
}

// WebhookClient posts alert messages to subscriber webhook URLs.
type WebhookClient struct {
	httpClient *http.Client
	authorLink string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewWebhookClient creates a delivery client with a bounded POST timeout.
func NewWebhookClient(authorLink string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *WebhookClient {
	return &WebhookClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		authorLink: authorLink,
		metrics:    metrics,
		logger:     logger,
	}
}

// PostAlert delivers one alert message and returns the HTTP status code.
// The caller decides what each code means for the subscriber's
// bookkeeping; only transport failures are returned as errors.
func (c *WebhookClient) PostAlert(ctx context.Context, url string, level domain.Level, ts time.Time) (int, error) {
	body, err := json.Marshal(NewAlertMessage(level, ts, c.authorLink))
	if err != nil {
		return 0, fmt.Errorf("encode alert message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, &domain.DeliveryError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, &domain.DeliveryError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
