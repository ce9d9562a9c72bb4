// Package session establishes and recovers the broker session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/logger"
	"github.com/kilianp07/irbridge/core/monitoring"
	"github.com/kilianp07/irbridge/internal/clock"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

// DefaultBackoff is the fixed pause between connection attempts.
const DefaultBackoff = time.Second

// Config holds the supervisor settings.
type Config struct {
	// Topic is subscribed whenever the broker reports a new session.
	Topic   string
	Backoff time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Topic == "" {
		return errors.New("session: topic is required")
	}
	if c.Backoff < 0 {
		return errors.New("session: backoff must not be negative")
	}
	return nil
}

// Stats counts connection attempts since the supervisor was created.
type Stats struct {
	Attempts  int
	Successes int
	Failures  int
}

// Supervisor drives a Transport into the connected state, retrying without
// bound at a fixed rate.
type Supervisor struct {
	transport Transport
	cfg       Config
	log       logger.Logger
	sleep     clock.SleepFunc
	now       func() time.Time
	events    eventbus.Publisher[events.Event]

	// run serializes EnsureConnected calls and guards needSubscribe.
	run sync.Mutex
	// needSubscribe is set after a failed subscribe so the next connect
	// subscribes even if the broker continues the session.
	needSubscribe bool

	// mu guards the state machine and the counters. It is never held
	// across transport calls or backoff sleeps.
	mu    sync.Mutex
	sm    *stateless.StateMachine
	stats Stats
}

// Option customises a Supervisor.
type Option func(*Supervisor)

// WithSleep replaces the backoff sleep.
func WithSleep(fn clock.SleepFunc) Option {
	return func(s *Supervisor) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithClock replaces the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEvents publishes a SessionEvent for every transition.
func WithEvents(p eventbus.Publisher[events.Event]) Option {
	return func(s *Supervisor) { s.events = p }
}

// NewSupervisor creates a Supervisor in the Disconnected state.
func NewSupervisor(t Transport, cfg Config, log logger.Logger, opts ...Option) (*Supervisor, error) {
	if t == nil {
		return nil, errors.New("session: transport is required")
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultBackoff
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Supervisor{
		transport: t,
		cfg:       cfg,
		log:       logger.OrNop(log),
		sleep:     clock.Sleep,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.sm = newStateMachine()
	return s, nil
}

func newStateMachine() *stateless.StateMachine {
	sm := stateless.NewStateMachine(Disconnected)
	sm.Configure(Disconnected).
		Permit(triggerConnect, Connecting).
		Ignore(triggerLost)
	sm.Configure(Connecting).
		Permit(triggerSucceed, Connected).
		PermitReentry(triggerRetry).
		Permit(triggerAbort, Disconnected).
		Ignore(triggerLost)
	sm.Configure(Connected).
		Permit(triggerConnect, Connecting).
		Permit(triggerLost, Disconnected)
	return sm
}

// State returns the current session state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sm.MustState().(State)
}

// Stats returns the attempt counters.
func (s *Supervisor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// EnsureConnected connects, subscribing when the session is new, and retries
// after every failure until it succeeds or ctx is cancelled. It always makes
// at least one connect attempt, even when already connected.
func (s *Supervisor) EnsureConnected(ctx context.Context) error {
	s.run.Lock()
	defer s.run.Unlock()

	s.transition(ctx, triggerConnect, events.SessionEvent{}, nil)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			s.transition(ctx, triggerAbort, events.SessionEvent{Attempt: attempt, Err: err}, nil)
			return err
		}
		s.count(func(st *Stats) { st.Attempts++ })
		present, err := s.attempt(ctx)
		if err == nil {
			s.transition(ctx, triggerSucceed, events.SessionEvent{Attempt: attempt, SessionPresent: present},
				func(st *Stats) { st.Successes++ })
			s.log.Infof("connected (attempt %d, session present: %t)", attempt, present)
			return nil
		}

		monitoring.Capture(monitoring.ModuleMQTT, err, "attempt", strconv.Itoa(attempt))
		s.log.Warnf("connection attempt %d failed: %v; retrying in %s", attempt, err, s.cfg.Backoff)
		s.transition(ctx, triggerRetry, events.SessionEvent{Attempt: attempt, Err: err},
			func(st *Stats) { st.Failures++ })

		if err := s.sleep(ctx, s.cfg.Backoff); err != nil {
			s.transition(ctx, triggerAbort, events.SessionEvent{Attempt: attempt, Err: err}, nil)
			return err
		}
	}
}

func (s *Supervisor) count(update func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.stats)
}

// transition updates the counters and fires trigger under mu.
func (s *Supervisor) transition(ctx context.Context, trigger string, ev events.SessionEvent, update func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if update != nil {
		update(&s.stats)
	}
	s.fire(ctx, trigger, ev)
}

func (s *Supervisor) attempt(ctx context.Context) (bool, error) {
	present, err := s.transport.Connect(ctx)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	if present && !s.needSubscribe {
		return true, nil
	}
	if err := s.transport.Subscribe(ctx, s.cfg.Topic); err != nil {
		s.needSubscribe = true
		return present, fmt.Errorf("subscribe %s: %w", s.cfg.Topic, err)
	}
	s.needSubscribe = false
	s.log.Infof("new session, subscribed to %s", s.cfg.Topic)
	return present, nil
}

// MarkLost records a transport failure observed outside the supervisor.
// It is a no-op unless the session is connected.
func (s *Supervisor) MarkLost(ctx context.Context, cause error) {
	s.transition(ctx, triggerLost, events.SessionEvent{Err: cause}, nil)
}

// fire must be called with mu held.
func (s *Supervisor) fire(ctx context.Context, trigger string, ev events.SessionEvent) {
	from := s.sm.MustState().(State)
	if err := s.sm.FireCtx(context.WithoutCancel(ctx), trigger); err != nil {
		s.log.Errorf("session transition %s from %s: %v", trigger, from, err)
		return
	}
	to := s.sm.MustState().(State)
	if trigger == triggerLost && to == from {
		return
	}
	ev.From = from.String()
	ev.To = to.String()
	ev.Trigger = trigger
	ev.Time = s.now()
	s.log.Debugw("session transition", map[string]any{"from": ev.From, "to": ev.To, "trigger": trigger})
	eventbus.Publish[events.Event](s.events, ev)
}
