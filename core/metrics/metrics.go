package metrics

import "github.com/kilianp07/irbridge/core/events"

// MetricsSink records the per-tick status outcome. It is the one recorder
// every sink implements.
type MetricsSink interface {
	RecordStatus(ev events.StatusEvent) error
}

// TransmitRecorder records IR bus transactions.
type TransmitRecorder interface {
	RecordTransmit(ev events.TransmitEvent) error
}

// SessionRecorder records broker session transitions.
type SessionRecorder interface {
	RecordSession(ev events.SessionEvent) error
}

// CommandRecorder records inbound command messages.
type CommandRecorder interface {
	RecordCommand(ev events.CommandEvent) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordStatus(events.StatusEvent) error     { return nil }
func (NopSink) RecordTransmit(events.TransmitEvent) error { return nil }
func (NopSink) RecordSession(events.SessionEvent) error   { return nil }
func (NopSink) RecordCommand(events.CommandEvent) error   { return nil }

// Record dispatches ev to the matching recorder of sink, if implemented.
func Record(sink MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.StatusEvent:
		return sink.RecordStatus(e)
	case events.TransmitEvent:
		if r, ok := sink.(TransmitRecorder); ok {
			return r.RecordTransmit(e)
		}
	case events.SessionEvent:
		if r, ok := sink.(SessionRecorder); ok {
			return r.RecordSession(e)
		}
	case events.CommandEvent:
		if r, ok := sink.(CommandRecorder); ok {
			return r.RecordCommand(e)
		}
	}
	return nil
}
