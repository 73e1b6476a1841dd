package alert

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

// SubscriberStore persists per-subscriber delivery bookkeeping.
type SubscriberStore interface {
	ListDue(ctx context.Context, ts time.Time, force bool) ([]domain.Subscriber, error)
	MarkNotified(ctx context.Context, id uint, ts time.Time) error
	Deactivate(ctx context.Context, id uint) error
}

// AlertPoster delivers one alert message and returns the HTTP status code.
type AlertPoster interface {
	PostAlert(ctx context.Context, url string, level domain.Level, ts time.Time) (int, error)
}

// Dispatcher fans a status change out to subscribers. Each subscriber's
// delivery and bookkeeping is independent: one endpoint failing never
// blocks the rest, and a crash mid-fanout leaves already-notified
// subscribers skipped on the retry.
type Dispatcher struct {
	subscribers SubscriberStore
	poster      AlertPoster
	reporter    *observability.Reporter
	metrics     *observability.Metrics
	logger      *slog.Logger
	concurrency int
}

// NewDispatcher creates a dispatcher with bounded fanout concurrency.
func NewDispatcher(subscribers SubscriberStore, poster AlertPoster, reporter *observability.Reporter,
	metrics *observability.Metrics, logger *slog.Logger, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		subscribers: subscribers,
		poster:      poster,
		reporter:    reporter,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Deliver sends one alert to one subscriber and updates its bookkeeping
// from the response. Endpoint failures become diagnostic events; only
// store failures are returned so the generation stays owed and the next
// trigger retries it.
func (d *Dispatcher) Deliver(ctx context.Context, sub domain.Subscriber, level domain.Level, ts time.Time, force bool) error {
	if !force && (sub.Inactive || sub.NotifiedAt(ts)) {
		d.metrics.Deliveries.WithLabelValues("skipped").Inc()
		return nil
	}

	code, err := d.poster.PostAlert(ctx, sub.WebhookURL, level, ts)
	if err != nil {
		d.metrics.Deliveries.WithLabelValues("failed").Inc()
		d.reporter.Event("alert_delivery_failed", map[string]any{
			"team":  sub.TeamID,
			"error": err.Error(),
		})
		return nil
	}

	switch {
	case code == http.StatusNotFound:
		// The webhook is gone; stop addressing it until re-registration.
		d.metrics.Deliveries.WithLabelValues("deactivated").Inc()
		d.reporter.Event("team_marked_inactive", map[string]any{
			"team":        sub.TeamID,
			"channel":     sub.ChannelID,
			"status_code": code,
		})
		return d.subscribers.Deactivate(ctx, sub.ID)
	case code != http.StatusOK:
		// Transient: last_notified still lags, so the next cycle retries.
		d.metrics.Deliveries.WithLabelValues("failed").Inc()
		d.reporter.Event("bad_slack_request", map[string]any{
			"team":        sub.TeamID,
			"status_code": code,
		})
		return nil
	}

	d.metrics.Deliveries.WithLabelValues("delivered").Inc()
	d.metrics.SubscribersNotified.Inc()
	return d.subscribers.MarkNotified(ctx, sub.ID, ts)
}

// DeliverAll fans the status generation ts out to every qualifying
// subscriber, in parallel up to the configured concurrency. Bookkeeping
// failures are collected rather than aborting the remaining deliveries.
func (d *Dispatcher) DeliverAll(ctx context.Context, level domain.Level, ts time.Time, force bool) error {
	subs, err := d.subscribers.ListDue(ctx, ts, force)
	if err != nil {
		return err
	}
	d.logger.Info("delivering alerts", "subscribers", len(subs), "level", level.Code, "force", force)
	if len(subs) == 0 {
		return nil
	}

	start := time.Now()

	var (
		mu       sync.Mutex
		failures []error
	)

	g := &errgroup.Group{}
	g.SetLimit(d.concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			if err := d.Deliver(ctx, sub, level, ts, force); err != nil {
				d.logger.Error("delivery bookkeeping failed", "team", sub.TeamID, "error", err)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	d.metrics.FanoutDuration.Observe(time.Since(start).Seconds())
	return errors.Join(failures...)
}
