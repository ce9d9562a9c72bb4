package events

import "time"

// StatusEvent is published once per loop tick.
type StatusEvent struct {
	// Value is the pin value; meaningless when PinErr is set.
	Value     bool
	PinErr    error
	Published bool
	Err       error
	Time      time.Time
}

func (StatusEvent) Kind() string { return "status" }

// CommandEvent is published for every message received on the command topic.
type CommandEvent struct {
	Topic    string
	Payload  []byte
	Accepted bool
	Time     time.Time
}

func (CommandEvent) Kind() string { return "command" }
