// Package bridge runs the control loop tying the broker session, the command
// router and the status input together.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/logger"
	"github.com/kilianp07/irbridge/core/model"
	"github.com/kilianp07/irbridge/core/monitoring"
	"github.com/kilianp07/irbridge/internal/clock"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

// DefaultInterval is the pause at the end of every iteration.
const DefaultInterval = time.Second

// Handler receives inbound messages during Poll.
type Handler func(ctx context.Context, topic string, payload []byte)

// Conn is the established broker session.
type Conn interface {
	// Poll delivers every pending inbound message to h before returning. An
	// error means the transport is broken.
	Poll(ctx context.Context, h Handler) error
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Supervisor recovers the broker session.
type Supervisor interface {
	EnsureConnected(ctx context.Context) error
	MarkLost(ctx context.Context, cause error)
}

// Pin is the digital status input.
type Pin interface {
	Read() (bool, error)
}

// Router handles one inbound message synchronously.
type Router interface {
	OnMessage(ctx context.Context, topic string, payload []byte)
}

// Config holds the loop settings.
type Config struct {
	StatusTopic string
	Interval    time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StatusTopic == "" {
		return errors.New("bridge: status topic is required")
	}
	if c.Interval < 0 {
		return errors.New("bridge: interval must not be negative")
	}
	return nil
}

// Loop is the bridge's single thread of control.
type Loop struct {
	conn   Conn
	sup    Supervisor
	pin    Pin
	router Router
	cfg    Config
	log    logger.Logger
	sleep  clock.SleepFunc
	now    func() time.Time
	events eventbus.Publisher[events.Event]
}

// Option customises a Loop.
type Option func(*Loop)

// WithSleep replaces the end-of-iteration sleep.
func WithSleep(fn clock.SleepFunc) Option {
	return func(l *Loop) {
		if fn != nil {
			l.sleep = fn
		}
	}
}

// WithEvents publishes a StatusEvent for every iteration.
func WithEvents(p eventbus.Publisher[events.Event]) Option {
	return func(l *Loop) { l.events = p }
}

// WithClock replaces the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Loop.
func New(conn Conn, sup Supervisor, pin Pin, r Router, cfg Config, log logger.Logger, opts ...Option) (*Loop, error) {
	if conn == nil || sup == nil || pin == nil || r == nil {
		return nil, errors.New("bridge: conn, supervisor, pin and router are required")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Loop{
		conn:   conn,
		sup:    sup,
		pin:    pin,
		router: r,
		cfg:    cfg,
		log:    logger.OrNop(log),
		sleep:  clock.Sleep,
		now:    time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Run connects and then iterates until ctx is cancelled. Cancellation is a
// clean exit and yields a nil error.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.sup.EnsureConnected(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	l.log.Infof("bridge running, status every %s on %s", l.cfg.Interval, l.cfg.StatusTopic)
	for {
		l.Tick(ctx)
		if err := l.sleep(ctx, l.cfg.Interval); err != nil {
			l.log.Infof("bridge loop stopped")
			return nil
		}
	}
}

// Tick performs one iteration: poll (recovering the session on failure),
// read the pin, publish its status.
func (l *Loop) Tick(ctx context.Context) {
	if err := l.conn.Poll(ctx, l.router.OnMessage); err != nil {
		if ctx.Err() != nil {
			return
		}
		l.log.Warnf("poll failed: %v", err)
		monitoring.Capture(monitoring.ModuleMQTT, err, "op", "poll")
		l.sup.MarkLost(ctx, err)
		if err := l.sup.EnsureConnected(ctx); err != nil {
			return
		}
	}

	ev := events.StatusEvent{Time: l.now()}
	on, err := l.pin.Read()
	if err != nil {
		l.log.Errorf("read status pin: %v", err)
		monitoring.Capture(monitoring.ModuleGPIO, err)
		ev.PinErr = err
		eventbus.Publish[events.Event](l.events, ev)
		return
	}
	ev.Value = on
	l.log.Debugf("power: %s", model.StatusPayload(on))

	if err := l.conn.Publish(ctx, l.cfg.StatusTopic, model.StatusPayload(on)); err != nil {
		l.log.Warnf("publish status: %v", err)
		monitoring.Capture(monitoring.ModuleMQTT, err, "op", "publish")
		ev.Err = err
	} else {
		ev.Published = true
	}
	eventbus.Publish[events.Event](l.events, ev)
}
