package domain

import "time"

// Status is the persisted singleton advisory state.
type Status struct {
	Code    string
	Updated time.Time
}

// StatusChange describes a confirmed transition to a new status.
type StatusChange struct {
	Status Status
	Level  Level
}

// Seeded reports whether the status has ever been set. A zero Code is the
// first-run sentinel written when the singleton row is created.
func (s Status) Seeded() bool {
	return s.Code != ""
}
