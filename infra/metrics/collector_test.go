package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/model"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

func TestStartEventCollector(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	bus := eventbus.New[events.Event]()

	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, nil)

	bus.Publish(events.CommandEvent{Accepted: true})
	bus.Publish(events.TransmitEvent{Result: model.TransmitResult{Success: true}})
	bus.Publish(events.StatusEvent{Value: true, Published: true})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.statusPublish.WithLabelValues("ok")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.commands.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.transmits.WithLabelValues("ok", "false")))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollectorStopsOnBusClose(t *testing.T) {
	bus := eventbus.New[events.Event]()
	done := StartEventCollector(context.Background(), bus, newTestPromSink(t), nil)
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollectorNilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, newTestPromSink(t), nil)
	_, open := <-done
	assert.False(t, open)
}
