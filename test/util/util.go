// Package util provides helpers shared across integration tests.
//
// StartMosquitto launches a disposable Mosquitto broker in a Docker container.
// Observer is a plain paho client used to drive and watch the bridge from the
// broker side. WaitForMetric polls a Prometheus endpoint.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
connection_messages true
`

// Broker is a running Mosquitto container.
type Broker struct {
	URL       string
	container tc.Container
}

// Terminate stops and removes the container.
func (b *Broker) Terminate() {
	_ = b.container.Terminate(context.Background())
}

// StartMosquitto launches a temporary Mosquitto broker and waits until it
// accepts MQTT connections.
func StartMosquitto(ctx context.Context) (*Broker, error) {
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			Reader:            strings.NewReader(mosquittoConf),
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, err
	}
	b := &Broker{container: cont}
	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		b.Terminate()
		return nil, err
	}
	b.URL = endpoint

	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := probe(waitCtx, b.URL); err != nil {
		b.Terminate()
		return nil, fmt.Errorf("mosquitto not ready: %w", err)
	}
	return b, nil
}

func probe(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		tok := cli.Connect()
		if tok.Wait() && tok.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// WaitForMetric polls metricsURL until its body contains substr or ctx is
// done.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		if body, err := scrape(ctx, metricsURL); err == nil && strings.Contains(body, substr) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func scrape(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

// Observer is a plain paho client recording messages on one topic.
type Observer struct {
	cli  paho.Client
	msgs chan []byte
}

// NewObserver connects to broker and subscribes to topic.
func NewObserver(broker, clientID, topic string) (*Observer, error) {
	o := &Observer{msgs: make(chan []byte, 64)}
	o.cli = paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID(clientID))
	if tok := o.cli.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, tok.Error()
	}
	tok := o.cli.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		select {
		case o.msgs <- append([]byte(nil), m.Payload()...):
		default:
		}
	})
	if tok.Wait() && tok.Error() != nil {
		o.cli.Disconnect(100)
		return nil, tok.Error()
	}
	return o, nil
}

// Next returns the next payload or an error after timeout.
func (o *Observer) Next(timeout time.Duration) ([]byte, error) {
	select {
	case m := <-o.msgs:
		return m, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no message within %s", timeout)
	}
}

// Publish sends payload on topic at QoS 1.
func (o *Observer) Publish(topic string, payload []byte) error {
	tok := o.cli.Publish(topic, 1, false, payload)
	tok.Wait()
	return tok.Error()
}

func (o *Observer) Close() { o.cli.Disconnect(100) }
