package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/irbridge/config"
	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/core/events"
	"github.com/kilianp07/irbridge/core/ir"
	"github.com/kilianp07/irbridge/core/journal"
	coremetrics "github.com/kilianp07/irbridge/core/metrics"
	coremon "github.com/kilianp07/irbridge/core/monitoring"
	"github.com/kilianp07/irbridge/core/router"
	"github.com/kilianp07/irbridge/core/session"
	"github.com/kilianp07/irbridge/infra/logger"
	"github.com/kilianp07/irbridge/infra/metrics"
	"github.com/kilianp07/irbridge/infra/monitoring"
	"github.com/kilianp07/irbridge/infra/mqtt"
	"github.com/kilianp07/irbridge/internal/eventbus"
)

// Service wires the bridge loop to the broker, the transmitter and the pin.
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	events  *eventbus.Bus[events.Event]
	bus     ir.BusCloser
	pin     bridge.PinCloser
	client  *mqtt.Client
	sup     *session.Supervisor
	loop    *bridge.Loop
	sink    coremetrics.MetricsSink
	journal journal.Store

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a Service from the configuration. Nothing touches the network
// until Run.
func New(cfg *config.Config) (s *Service, err error) {
	if err := logger.Configure(cfg.Log); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	s = &Service{cfg: cfg, log: logger.New("service"), events: eventbus.New[events.Event]()}
	defer func() {
		if err != nil {
			_ = s.Close()
			s = nil
		}
	}()

	tx, b, err := OpenTransactor(cfg)
	if err != nil {
		return s, err
	}
	s.bus = b
	if s.pin, err = OpenPin(cfg); err != nil {
		return s, err
	}
	r := router.New(tx, logger.New("router"), router.WithEvents(s.events), router.WithCode(cfg.Bridge.Code()))

	if s.client, err = mqtt.NewClient(cfg.MQTT); err != nil {
		return s, fmt.Errorf("mqtt client: %w", err)
	}
	s.sup, err = session.NewSupervisor(s.client, session.Config{
		Topic:   s.client.CommandTopic(),
		Backoff: cfg.Bridge.Backoff(),
	}, logger.New("session"), session.WithEvents(s.events))
	if err != nil {
		return s, err
	}
	s.loop, err = bridge.New(s.client, s.sup, s.pin, r, bridge.Config{
		StatusTopic: s.client.StatusTopic(),
		Interval:    cfg.Bridge.Tick(),
	}, logger.New("bridge"), bridge.WithEvents(s.events))
	if err != nil {
		return s, err
	}

	if s.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		return s, fmt.Errorf("metrics sink: %w", err)
	}
	if s.journal, err = journal.New(cfg.Journal); err != nil {
		return s, err
	}
	return s, nil
}

// Run starts the collectors and blocks in the bridge loop until ctx is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wait(metrics.StartEventCollector(ctx, s.events, s.sink, logger.New("collector")))
	if s.journal != nil {
		s.wait(journal.StartRecorder(ctx, s.events, s.journal, logger.New("journal")))
	}
	if s.cfg.Metrics.HasSink("prometheus") {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return s.loop.Run(ctx)
}

func (s *Service) wait(done <-chan struct{}) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-done
	}()
}

// Supervisor exposes the session state for diagnostics.
func (s *Service) Supervisor() *session.Supervisor { return s.sup }

// Close stops Run and releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
		if s.client != nil {
			s.client.Disconnect()
		}
		s.events.Close()
		s.wg.Wait()
		if s.pin != nil {
			errs = append(errs, s.pin.Close())
		}
		if s.bus != nil {
			errs = append(errs, s.bus.Close())
		}
		if c, ok := s.sink.(coremetrics.Closer); ok {
			errs = append(errs, c.Close())
		}
		if s.journal != nil {
			errs = append(errs, s.journal.Close())
		}
		coremon.Flush(2 * time.Second)
	})
	return errors.Join(errs...)
}
