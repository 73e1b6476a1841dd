package domain

import "fmt"

// SourceErrorKind distinguishes transport failures from bad documents.
type SourceErrorKind string

const (
	// SourceNetwork covers transport errors and non-200 upstream responses.
	SourceNetwork SourceErrorKind = "network"
	// SourceMalformed covers unparseable XML or a missing/empty status element.
	SourceMalformed SourceErrorKind = "malformed"
)

// SourceError reports an upstream fetch or parse failure. It is never
// fatal to a check cycle: the caller records a diagnostic event and
// treats the cycle as "no change".
type SourceError struct {
	Kind SourceErrorKind
	Err  error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("status source: %s", e.Kind)
	}
	return fmt.Sprintf("status source: %s: %v", e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// UnknownLevelError reports a fetched code outside the fixed level set.
// Unknown codes are never committed to the status row.
type UnknownLevelError struct {
	Code string
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("unknown alert level %q", e.Code)
}

// DeliveryError reports a webhook POST that could not reach the
// subscriber endpoint at all. HTTP-level failures (404, 5xx) are
// conveyed by status code instead and handled by the dispatcher.
type DeliveryError struct {
	URL string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook delivery: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
