// Package domain models the French Toast advisory system.
//
// # Data Source
//
// The advisory status originates from the Universal Hub French Toast
// Alert System (https://www.universalhub.com/french-toast), which rates
// impending New England snowstorms by how urgently Bostonians need to
// stock up on milk, eggs, and bread. The upstream feed is a small XML
// document whose <status> element carries the current status code.
//
// # Status Codes
//
// Exactly five codes exist, ordered by increasing severity:
//
//	LOW      1 slice   no storm predicted
//	GUARDED  2 slices  light snow predicted
//	ELEVATED 3 slices  moderate, plowable snow predicted
//	HIGH     4 slices  heavy snow predicted
//	SEVERE   5 slices  nor'easter predicted
//
// Codes are stored and compared uppercase. The persisted status row is a
// singleton; an empty stored code is the first-run sentinel and never
// resolves to a level, so the first valid observation always registers
// as a change and seeds delivery to every subscriber.
//
// # Subscribers
//
// A subscriber is a Slack incoming-webhook endpoint identified by team
// and channel. Its webhook URL is kept encrypted at rest. LastNotified
// records the *status's* updated timestamp rather than the delivery
// time: any subscriber whose LastNotified differs from the current
// status timestamp is owed a delivery, which makes redelivery idempotent
// across retries and process restarts.
package domain
