// Package alert holds the change-detection and fanout engine: the Checker
// decides whether the advisory status really changed, the Dispatcher
// delivers the new status to subscribers, and the Listener wires both to
// the external trigger signals.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

// StatusFetcher fetches the current status code from the upstream feed.
type StatusFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// StatusStore reads and atomically rewrites the persisted status singleton.
type StatusStore interface {
	Get(ctx context.Context) (domain.Status, error)
	CompareAndSwap(ctx context.Context, old, code string, ts time.Time) (bool, error)
}

// Checker compares the fetched status against the stored one and commits
// confirmed changes. It holds no state of its own: every check re-reads
// the stored row so concurrent triggers see each other's writes.
type Checker struct {
	source   StatusFetcher
	statuses StatusStore
	reporter *observability.Reporter
	metrics  *observability.Metrics
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewChecker creates a change detector.
func NewChecker(source StatusFetcher, statuses StatusStore, reporter *observability.Reporter,
	metrics *observability.Metrics, clock clockwork.Clock, logger *slog.Logger) *Checker {
	return &Checker{
		source:   source,
		statuses: statuses,
		reporter: reporter,
		metrics:  metrics,
		clock:    clock,
		logger:   logger,
	}
}

// CheckForChange runs one detection cycle. A nil StatusChange means "no
// change". Fetch failures and unknown codes are recorded as diagnostic
// events and reported as no change; only store failures are returned,
// abandoning the cycle for the next trigger to retry.
func (c *Checker) CheckForChange(ctx context.Context) (*domain.StatusChange, error) {
	current, err := c.statuses.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current status: %w", err)
	}
	c.metrics.ChecksTotal.Inc()

	code, err := c.source.Fetch(ctx)
	if err != nil {
		c.reporter.Event("status_fetch_failed", map[string]any{"error": err.Error()})
		return nil, nil
	}

	level, err := domain.LevelFor(code)
	if err != nil {
		c.reporter.Event("unknown_status", map[string]any{"status": code})
		return nil, nil
	}

	c.logger.Info("status check", "current", current.Code, "fetched", code)
	if code == domain.NormalizeCode(current.Code) {
		return nil, nil
	}

	// Seconds precision matches the payload's unix timestamp and survives
	// a round-trip through the database intact, which the dedup compare
	// depends on.
	now := c.clock.Now().UTC().Truncate(time.Second)

	swapped, err := c.statuses.CompareAndSwap(ctx, current.Code, code, now)
	if err != nil {
		return nil, fmt.Errorf("commit new status: %w", err)
	}
	if !swapped {
		// A concurrent trigger committed first; it owns the fanout.
		c.logger.Info("status already committed by concurrent check", "status", code)
		return nil, nil
	}

	c.metrics.StatusChanges.Inc()
	c.metrics.CurrentLevel.Set(float64(level.Ordinal))
	c.logger.Warn("status changed", "from", current.Code, "to", code)

	return &domain.StatusChange{
		Status: domain.Status{Code: code, Updated: now},
		Level:  level,
	}, nil
}
