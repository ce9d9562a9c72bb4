// Package router interprets messages received on the command topic.
package router

import (
	"context"
	"time"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/logger"
	"github.com/kilianp07/irbridge/core/model"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

// Transmitter sends an IR code to the peripheral.
type Transmitter interface {
	Transmit(ctx context.Context, code model.IRCode) model.TransmitResult
}

// Router maps inbound payloads to IR transmissions. Unknown payloads are
// ignored so new command bytes can be introduced without breaking old
// bridges.
type Router struct {
	tx     Transmitter
	code   model.IRCode
	log    logger.Logger
	events eventbus.Publisher[events.Event]
	now    func() time.Time
}

// Option customises a Router.
type Option func(*Router)

// WithEvents publishes command and transmit events.
func WithEvents(p eventbus.Publisher[events.Event]) Option {
	return func(r *Router) { r.events = p }
}

// WithCode overrides the code sent on power-on.
func WithCode(c model.IRCode) Option {
	return func(r *Router) { r.code = c }
}

// New returns a Router sending model.PowerCode through tx.
func New(tx Transmitter, log logger.Logger, opts ...Option) *Router {
	r := &Router{
		tx:   tx,
		code: model.PowerCode,
		log:  logger.OrNop(log),
		now:  time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// IsPowerCommand reports whether payload requests a power toggle: the single
// byte 0x01 or the ASCII digit '1'.
func IsPowerCommand(payload []byte) bool {
	return len(payload) == 1 && (payload[0] == 0x01 || payload[0] == '1')
}

// OnMessage handles one inbound message synchronously. It returns once the
// triggered transaction, if any, has completed.
func (r *Router) OnMessage(ctx context.Context, topic string, payload []byte) {
	accepted := IsPowerCommand(payload)
	eventbus.Publish[events.Event](r.events, events.CommandEvent{
		Topic:    topic,
		Payload:  append([]byte(nil), payload...),
		Accepted: accepted,
		Time:     r.now(),
	})
	if !accepted {
		r.log.Debugf("ignoring payload %q on %s", payload, topic)
		return
	}

	r.log.Infof("power command on %s, sending %s", topic, r.code)
	res := r.tx.Transmit(ctx, r.code)
	if res.Err != nil {
		r.log.Errorf("transmit %s: %v", r.code, res.Err)
	}
	eventbus.Publish[events.Event](r.events, events.TransmitEvent{Result: res})
}
