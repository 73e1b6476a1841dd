package observability

import (
	"log/slog"

	"github.com/google/uuid"
)

// Reporter emits named diagnostic events. Events are the sole user-visible
// failure surface for the check-and-fanout engine: nothing waits on a
// trigger cycle synchronously, so failures are recorded rather than
// returned to a caller.
type Reporter struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewReporter creates a diagnostic event reporter.
func NewReporter(logger *slog.Logger, metrics *Metrics) *Reporter {
	return &Reporter{logger: logger, metrics: metrics}
}

// Event records a diagnostic event with a structured payload. Each event
// gets a unique id so occurrences can be correlated across log storage
// and the diagnostic_events_total counter.
func (r *Reporter) Event(name string, payload map[string]any) {
	r.metrics.DiagnosticEvents.WithLabelValues(name).Inc()

	attrs := make([]any, 0, 2+2*len(payload))
	attrs = append(attrs, "event", name, "event_id", uuid.NewString())
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	r.logger.Warn("diagnostic event", attrs...)
}
