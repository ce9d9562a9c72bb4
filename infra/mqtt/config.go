package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Defaults matching the living room bridge deployment.
const (
	DefaultBroker       = "tcp://iot_server:1883"
	DefaultClientID     = "tv"
	DefaultCommandTopic = "in/livingroom/tv"
	DefaultStatusTopic  = "out/livingroom/tv"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker       string `json:"broker"`
	ClientID     string `json:"client_id"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	CommandTopic string `json:"command_topic"`
	StatusTopic  string `json:"status_topic"`
	UseTLS       bool   `json:"use_tls"`
	ClientCert   string `json:"client_cert"`
	ClientKey    string `json:"client_key"`
	CABundle     string `json:"ca_bundle"`
	AuthMethod   string `json:"auth_method"`
	// QoS per message kind: "command" (subscription) and "status".
	QoS              map[string]byte `json:"qos"`
	LWTTopic         string          `json:"lwt_topic"`
	LWTPayload       string          `json:"lwt_payload"`
	LWTQoS           byte            `json:"lwt_qos"`
	LWTRetain        bool            `json:"lwt_retain"`
	ConnectTimeoutMS int             `json:"connect_timeout_ms"`
	KeepAliveSeconds int             `json:"keep_alive_seconds"`
	// InboxSize bounds the number of commands buffered between polls.
	InboxSize int         `json:"inbox_size"`
	TLSConfig *tls.Config `json:"-"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.CommandTopic == "" {
		c.CommandTopic = DefaultCommandTopic
	}
	if c.StatusTopic == "" {
		c.StatusTopic = DefaultStatusTopic
	}
	if c.ConnectTimeoutMS <= 0 {
		c.ConnectTimeoutMS = 5000
	}
	if c.KeepAliveSeconds <= 0 {
		c.KeepAliveSeconds = 60
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 16
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" || c.ClientID == "" {
		return errors.New("mqtt: broker and client_id are required")
	}
	if c.CommandTopic == "" || c.StatusTopic == "" {
		return errors.New("mqtt: command_topic and status_topic are required")
	}
	for _, t := range []string{c.CommandTopic, c.StatusTopic} {
		if strings.ContainsAny(t, "+#") {
			return fmt.Errorf("mqtt: topic %q must not contain wildcards", t)
		}
	}
	for k, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt: invalid qos %d for %s", q, k)
		}
	}
	return nil
}

// ConnectTimeout returns the broker handshake timeout.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c Config) qos(kind string) byte {
	if q, ok := c.QoS[kind]; ok {
		return q
	}
	return 0
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificates found in %s", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
