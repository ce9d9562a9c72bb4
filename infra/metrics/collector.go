package metrics

import (
	"context"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/logger"
	coremetrics "github.com/kilianp07/irbridge/core/metrics"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records every event on
// sink. It stops when the context is canceled or the bus is closed; the
// returned channel is closed once it has.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := coremetrics.Record(sink, ev); err != nil {
					log.Warnf("record %s event: %v", ev.Kind(), err)
				}
			}
		}
	}()
	return done
}
