// Package metrics defines the sinks that record bridge activity. Sinks like
// PromSink and InfluxSink implement MetricsSink plus any of the optional
// recorder interfaces, and can be combined with NewMultiSink. The factory
// helpers return a MultiSink automatically when several sinks are
// configured.
package metrics
