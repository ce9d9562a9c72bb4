package metrics

import (
	"errors"

	"github.com/kilianp07/irbridge/core/events"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) forward(ev events.Event) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := Record(s, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordStatus forwards the status to all sinks. Every sink is tried and
// the errors are joined.
func (m *MultiSink) RecordStatus(ev events.StatusEvent) error { return m.forward(ev) }

// RecordTransmit forwards to sinks implementing TransmitRecorder.
func (m *MultiSink) RecordTransmit(ev events.TransmitEvent) error { return m.forward(ev) }

// RecordSession forwards to sinks implementing SessionRecorder.
func (m *MultiSink) RecordSession(ev events.SessionEvent) error { return m.forward(ev) }

// RecordCommand forwards to sinks implementing CommandRecorder.
func (m *MultiSink) RecordCommand(ev events.CommandEvent) error { return m.forward(ev) }

// Close closes every sink implementing Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
