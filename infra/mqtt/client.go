// Package mqtt adapts the Eclipse Paho client to the bridge's synchronous
// session model: inbound messages are queued by Paho's goroutines and handed
// to the caller's handler only from Poll.
package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	IsConnectionOpen() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// sessionToken is implemented by *paho.ConnectToken.
type sessionToken interface {
	SessionPresent() bool
}

type message struct {
	topic   string
	payload []byte
}

// Client is a broker session with a non-clean session and no automatic
// reconnection; recovery is driven by the caller through Connect.
type Client struct {
	cfg  Config
	opts *paho.ClientOptions
	log  logger.Logger

	mu  sync.Mutex
	cli pahoClient

	inbox chan message
	lost  chan error
}

// NewClient prepares a client. It does not connect.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg:   cfg,
		opts:  opts,
		log:   logger.New("mqtt_client"),
		inbox: make(chan message, cfg.InboxSize),
		lost:  make(chan error, 1),
	}
	opts.SetDefaultPublishHandler(c.onMessage)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.log.Errorf("connection lost: %v", err)
		select {
		case c.lost <- err:
		default:
		}
	})
	opts.SetOnConnectHandler(func(paho.Client) {
		c.log.Infof("MQTT connected to %s as %s", cfg.Broker, cfg.ClientID)
	})
	return c, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetCleanSession(false)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	if cfg.ConnectTimeoutMS > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout())
	}
	if cfg.KeepAliveSeconds > 0 {
		opts.SetKeepAlive(time.Duration(cfg.KeepAliveSeconds) * time.Second)
	}
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// CommandTopic returns the subscribed command topic.
func (c *Client) CommandTopic() string { return c.cfg.CommandTopic }

// StatusTopic returns the topic status messages are published on.
func (c *Client) StatusTopic() string { return c.cfg.StatusTopic }

// Connect opens a fresh connection, dropping the previous one if any, and
// reports whether the broker continued the existing session.
func (c *Client) Connect(ctx context.Context) (bool, error) {
	c.mu.Lock()
	old := c.cli
	c.cli = nil
	c.mu.Unlock()
	if old != nil && old.IsConnectionOpen() {
		old.Disconnect(0)
	}
	select {
	case <-c.lost:
	default:
	}

	cli := newMQTTClient(c.opts)
	tok := cli.Connect()
	if err := c.wait(ctx, tok); err != nil {
		// paho keeps dialling in the background until told to stop.
		cli.Disconnect(0)
		return false, fmt.Errorf("connect %s: %w", c.cfg.Broker, err)
	}
	present := false
	if st, ok := tok.(sessionToken); ok {
		present = st.SessionPresent()
	}
	c.mu.Lock()
	c.cli = cli
	c.mu.Unlock()
	return present, nil
}

// Subscribe registers the command subscription.
func (c *Client) Subscribe(ctx context.Context, topic string) error {
	cli := c.current()
	if cli == nil {
		return ErrNotConnected
	}
	return c.wait(ctx, cli.Subscribe(topic, c.cfg.qos("command"), c.onMessage))
}

// Poll hands every queued inbound message to h on the caller's goroutine,
// then reports a broken connection if one was observed.
func (c *Client) Poll(ctx context.Context, h bridge.Handler) error {
	for done := false; !done; {
		select {
		case m := <-c.inbox:
			h(ctx, m.topic, m.payload)
		default:
			done = true
		}
	}
	select {
	case err := <-c.lost:
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	default:
	}
	cli := c.current()
	if cli == nil || !cli.IsConnectionOpen() {
		return ErrNotConnected
	}
	return nil
}

// Publish sends payload on topic with the "status" QoS, not retained.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	cli := c.current()
	if cli == nil {
		return ErrNotConnected
	}
	return c.wait(ctx, cli.Publish(topic, c.cfg.qos("status"), false, payload))
}

// Disconnect gracefully closes the MQTT connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cli := c.cli
	c.cli = nil
	c.mu.Unlock()
	if cli != nil && cli.IsConnected() {
		cli.Disconnect(250)
	}
}

func (c *Client) current() pahoClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cli
}

func (c *Client) onMessage(_ paho.Client, msg paho.Message) {
	m := message{topic: msg.Topic(), payload: append([]byte(nil), msg.Payload()...)}
	select {
	case c.inbox <- m:
	default:
		c.log.Warnf("inbox full, dropping message on %s", m.topic)
	}
}

func (c *Client) wait(ctx context.Context, tok paho.Token) error {
	timer := time.NewTimer(c.cfg.ConnectTimeout())
	defer timer.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrConnectTimeout
	}
}
