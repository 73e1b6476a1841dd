package alert

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
	"github.com/couchcryptid/french-toast-alert-service/internal/observability"
)

// ChangeChecker runs one detection cycle.
type ChangeChecker interface {
	CheckForChange(ctx context.Context) (*domain.StatusChange, error)
}

// Deliverer fans alerts out to subscribers.
type Deliverer interface {
	Deliver(ctx context.Context, sub domain.Subscriber, level domain.Level, ts time.Time, force bool) error
	DeliverAll(ctx context.Context, level domain.Level, ts time.Time, force bool) error
}

// TriggerSource blocks until an external trigger signal arrives.
type TriggerSource interface {
	Next(ctx context.Context) error
}

// Listener is the engine's entry point. It multiplexes the timer tick and
// the trigger queue into check cycles and owes no locking to either:
// OnTrigger is safe to invoke concurrently because the checker's
// compare-and-swap and the dispatcher's timestamp dedup are the
// concurrency-safety mechanisms.
type Listener struct {
	checker    ChangeChecker
	dispatcher Deliverer
	statuses   StatusStore
	triggers   TriggerSource // nil disables the queue trigger
	clock      clockwork.Clock
	interval   time.Duration // 0 disables the timer trigger
	reporter   *observability.Reporter
	metrics    *observability.Metrics
	logger     *slog.Logger
	ready      atomic.Bool
}

// NewListener creates a trigger listener.
func NewListener(checker ChangeChecker, dispatcher Deliverer, statuses StatusStore, triggers TriggerSource,
	clock clockwork.Clock, interval time.Duration, reporter *observability.Reporter,
	metrics *observability.Metrics, logger *slog.Logger) *Listener {
	return &Listener{
		checker:    checker,
		dispatcher: dispatcher,
		statuses:   statuses,
		triggers:   triggers,
		clock:      clock,
		interval:   interval,
		reporter:   reporter,
		metrics:    metrics,
		logger:     logger,
	}
}

// OnTrigger runs one check cycle and, on a confirmed change, one
// non-forced fanout. Persistence failures abandon the cycle; the next
// trigger re-evaluates from scratch.
func (l *Listener) OnTrigger(ctx context.Context) error {
	change, err := l.checker.CheckForChange(ctx)
	if err != nil {
		return err
	}
	if change == nil {
		l.ready.Store(true)
		return nil
	}

	err = l.dispatcher.DeliverAll(ctx, change.Level, change.Status.Updated, false)
	if err != nil {
		return err
	}
	l.ready.Store(true)
	return nil
}

// OnSubscriberRegistered sends a forced single delivery of the current
// status to a newly registered or reactivated subscriber, regardless of
// whether anything changed globally.
func (l *Listener) OnSubscriberRegistered(ctx context.Context, sub domain.Subscriber) error {
	status, err := l.statuses.Get(ctx)
	if err != nil {
		return err
	}
	if !status.Seeded() {
		// No observation yet; the first check cycle will cover this
		// subscriber along with everyone else.
		l.reporter.Event("initial_alert_skipped", map[string]any{"team": sub.TeamID})
		return nil
	}
	level, err := domain.LevelFor(status.Code)
	if err != nil {
		l.reporter.Event("unknown_status", map[string]any{"status": status.Code})
		return nil
	}
	return l.dispatcher.Deliver(ctx, sub, level, status.Updated, true)
}

// CheckReadiness reports readiness once at least one cycle has completed.
func (l *Listener) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("no status check completed yet")
	}
	return nil
}

// Run drives the listener from its trigger sources until ctx is
// cancelled. A cycle in flight at shutdown may be abandoned mid-fanout;
// the timestamp dedup makes the retry idempotent.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("trigger listener started",
		"interval", l.interval, "queue", l.triggers != nil)
	l.metrics.ListenerRunning.Set(1)
	defer l.metrics.ListenerRunning.Set(0)

	g, ctx := errgroup.WithContext(ctx)

	if l.interval > 0 {
		g.Go(func() error { return l.runTimer(ctx) })
	}
	if l.triggers != nil {
		g.Go(func() error { return l.runQueue(ctx) })
	}

	return g.Wait()
}

func (l *Listener) runTimer(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("timer trigger stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			l.trigger(ctx, "timer")
		}
	}
}

func (l *Listener) runQueue(ctx context.Context) error {
	// Exponential backoff keeps broker outages from becoming tight loops.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		if err := l.triggers.Next(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("queue trigger stopping", "reason", ctx.Err())
				return nil
			}
			l.logger.Error("trigger queue receive failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond
		l.trigger(ctx, "queue")
	}
}

func (l *Listener) trigger(ctx context.Context, kind string) {
	if err := l.OnTrigger(ctx); err != nil {
		l.logger.Error("check cycle abandoned", "trigger", kind, "error", err)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
