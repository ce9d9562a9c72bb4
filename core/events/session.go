package events

import "time"

// SessionEvent is published on every supervisor state transition, including
// failed attempts that keep the session connecting.
type SessionEvent struct {
	From           string
	To             string
	Trigger        string
	Attempt        int
	SessionPresent bool
	Err            error
	Time           time.Time
}

func (SessionEvent) Kind() string { return "session" }
