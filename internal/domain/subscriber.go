package domain

import "time"

// Subscriber is a registered Slack incoming-webhook endpoint.
// WebhookURL is decrypted in memory only; the store keeps it encrypted.
type Subscriber struct {
	ID           uint
	TeamID       string
	ChannelID    string
	WebhookURL   string
	Added        time.Time
	LastNotified *time.Time
	Inactive     bool
}

// NotifiedAt reports whether the subscriber already received the status
// generation identified by ts.
func (s Subscriber) NotifiedAt(ts time.Time) bool {
	return s.LastNotified != nil && s.LastNotified.Equal(ts)
}

// Registration carries the validated output of a completed OAuth exchange,
// keyed on team+channel for upserting the subscriber row.
type Registration struct {
	TeamID     string
	ChannelID  string
	WebhookURL string
}
