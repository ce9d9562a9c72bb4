// Package monitoring reports bridge failures to Sentry.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/irbridge/config"
	coremon "github.com/kilianp07/irbridge/core/monitoring"
)

// ServiceTag is attached to every event sent by the bridge.
const ServiceTag = "irbridge"

// NewSentryMonitor returns a Monitor backed by a dedicated Sentry hub. An
// empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
	})
	if err != nil {
		return nil, err
	}
	return newBridgeMonitor(client), nil
}

type bridgeMonitor struct {
	hub *sentry.Hub
}

func newBridgeMonitor(client *sentry.Client) *bridgeMonitor {
	scope := sentry.NewScope()
	scope.SetTag("service", ServiceTag)
	return &bridgeMonitor{hub: sentry.NewHub(client, scope)}
}

// CaptureException reports err. Events carrying a module tag are grouped
// per module, so bus and transport failures of the same type stay apart.
func (m *bridgeMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	m.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if mod := tags["module"]; mod != "" {
			scope.SetFingerprint([]string{"{{ default }}", mod})
		}
		m.hub.CaptureException(err)
	})
}

func (m *bridgeMonitor) RecoverPanic(v any) {
	m.hub.Recover(v)
	m.hub.Flush(2 * time.Second)
}

func (m *bridgeMonitor) Flush(timeout time.Duration) { m.hub.Flush(timeout) }
