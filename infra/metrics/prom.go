package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/irbridge/core/events"
	coremetrics "github.com/kilianp07/irbridge/core/metrics"
	"github.com/kilianp07/irbridge/core/session"
)

// PromSink records bridge events in Prometheus metrics.
type PromSink struct {
	statusPublish *prometheus.CounterVec
	pinValue      prometheus.Gauge
	transmits     *prometheus.CounterVec
	transmitTime  prometheus.Histogram
	transitions   *prometheus.CounterVec
	connected     prometheus.Gauge
	commands      *prometheus.CounterVec
}

// NewPromSink registers bridge metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics that
// are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.statusPublish, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irbridge_status_publish_total",
		Help: "Status publish attempts by result",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.pinValue, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "irbridge_pin_value",
		Help: "Last value read from the status input",
	})); err != nil {
		return nil, err
	}
	if s.transmits, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irbridge_transmit_total",
		Help: "IR bus transactions by outcome",
	}, []string{"result", "resynced"})); err != nil {
		return nil, err
	}
	if s.transmitTime, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irbridge_transmit_duration_seconds",
		Help:    "Duration of IR bus transactions",
		Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 1},
	})); err != nil {
		return nil, err
	}
	if s.transitions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irbridge_session_transitions_total",
		Help: "Broker session transitions by target state",
	}, []string{"to"})); err != nil {
		return nil, err
	}
	if s.connected, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "irbridge_session_connected",
		Help: "1 when the broker session is connected",
	})); err != nil {
		return nil, err
	}
	if s.commands, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irbridge_commands_total",
		Help: "Messages received on the command topic",
	}, []string{"accepted"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStatus counts the publish outcome and tracks the pin value.
func (s *PromSink) RecordStatus(ev events.StatusEvent) error {
	if ev.PinErr != nil {
		s.statusPublish.WithLabelValues("pin_error").Inc()
		return nil
	}
	s.pinValue.Set(boolToFloat(ev.Value))
	s.statusPublish.WithLabelValues(statusResult(ev)).Inc()
	return nil
}

// RecordTransmit counts the transaction and observes its duration.
func (s *PromSink) RecordTransmit(ev events.TransmitEvent) error {
	r := ev.Result
	s.transmits.WithLabelValues(r.Outcome(), strconv.FormatBool(r.Resynced)).Inc()
	s.transmitTime.Observe(r.Duration.Seconds())
	return nil
}

// RecordSession counts the transition and updates the connected gauge.
func (s *PromSink) RecordSession(ev events.SessionEvent) error {
	s.transitions.WithLabelValues(ev.To).Inc()
	s.connected.Set(boolToFloat(ev.To == session.Connected.String()))
	return nil
}

// RecordCommand counts inbound command messages.
func (s *PromSink) RecordCommand(ev events.CommandEvent) error {
	s.commands.WithLabelValues(strconv.FormatBool(ev.Accepted)).Inc()
	return nil
}

func statusResult(ev events.StatusEvent) string {
	if ev.Err != nil {
		return "error"
	}
	return "ok"
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var (
	_ coremetrics.MetricsSink      = (*PromSink)(nil)
	_ coremetrics.TransmitRecorder = (*PromSink)(nil)
	_ coremetrics.SessionRecorder  = (*PromSink)(nil)
	_ coremetrics.CommandRecorder  = (*PromSink)(nil)
)
