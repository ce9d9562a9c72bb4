package journal

import (
	"context"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/logger"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

// StartRecorder appends every TransmitEvent published on bus to store. The
// returned channel is closed once the recorder has stopped, which happens
// when ctx is cancelled or the bus is closed.
func StartRecorder(ctx context.Context, bus *eventbus.Bus[events.Event], store Store, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
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
				te, ok := ev.(events.TransmitEvent)
				if !ok {
					continue
				}
				if err := store.Append(context.WithoutCancel(ctx), FromResult(te.Result)); err != nil {
					log.Errorf("journal append %s: %v", te.Result.ID, err)
				}
			}
		}
	}()
	return done
}
