package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/irbridge/core/model"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "bridge"
  username: "user"
  password: "pass"
  command_topic: "in/kitchen/tv"
  status_topic: "out/kitchen/tv"
  qos:
    status: 1
bridge:
  power_code: "0x0a91"
  tick_ms: 500
bus:
  type: sim
  conf:
    read_fail_rate: 0.1
  address: 0x27
  byte_delay_ms: 50
gpio:
  type: sim
  conf:
    value: true
metrics:
  sinks:
    - type: "nop"
journal:
  backend: sqlite
log:
  level: debug
  format: console
sentry:
  dsn: ""
  server_name: livingroom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "bridge", cfg.MQTT.ClientID)
	assert.Equal(t, "in/kitchen/tv", cfg.MQTT.CommandTopic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS["status"])
	assert.Equal(t, model.IRCode(0x0a91), cfg.Bridge.Code())
	assert.Equal(t, 500*time.Millisecond, cfg.Bridge.Tick())
	assert.Equal(t, time.Second, cfg.Bridge.Backoff())
	assert.Equal(t, "sim", cfg.Bus.Module().Type)
	assert.Equal(t, 0.1, cfg.Bus.Conf["read_fail_rate"])
	assert.Equal(t, uint16(0x27), cfg.Bus.Transactor().Address)
	assert.Equal(t, 50*time.Millisecond, cfg.Bus.Transactor().ByteDelay)
	assert.Equal(t, byte('x'), cfg.Bus.Transactor().SyncByte)
	assert.Equal(t, "sim", cfg.GPIO.Module().Type)
	assert.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusAddr)
	assert.Equal(t, "irbridge-journal.db", cfg.Journal.Path)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "livingroom", cfg.Sentry.ServerName)
}

func TestLoadJSONDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"mqtt": {"broker": "tcp://broker:1883"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tv", cfg.MQTT.ClientID)
	assert.Equal(t, "in/livingroom/tv", cfg.MQTT.CommandTopic)
	assert.Equal(t, "out/livingroom/tv", cfg.MQTT.StatusTopic)
	assert.Equal(t, model.PowerCode, cfg.Bridge.Code())
	assert.Equal(t, "periph", cfg.Bus.Type)
	assert.Equal(t, uint16(0x26), cfg.Bus.Address)
	assert.Equal(t, "cdev", cfg.GPIO.Type)
	assert.Equal(t, "none", cfg.Journal.Backend)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "mqtt:\n  broker: tcp://file:1883\n")
	t.Setenv("K_MQTT__BROKER", "tcp://env:1883")
	t.Setenv("K_BUS__ADDRESS", "0x25")
	t.Setenv("K_BRIDGE__TICK_MS", "250")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://env:1883", cfg.MQTT.Broker)
	assert.Equal(t, uint16(0x25), cfg.Bus.Address)
	assert.Equal(t, 250, cfg.Bridge.TickMS)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"wildcard topic": "mqtt:\n  command_topic: in/+/tv\n",
		"wide address":   "bus:\n  address: 0x80\n",
		"wide code":      "bridge:\n  power_code: \"0x10000\"\n",
		"negative tick":  "bridge:\n  tick_ms: -1\n",
		"backend":        "journal:\n  backend: csv\n",
		"log level":      "log:\n  level: loud\n",
		"sample rate":    "sentry:\n  traces_sample_rate: 2\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
