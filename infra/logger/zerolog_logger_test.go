package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, Configure(cfg))
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		mu.Lock()
		format, level = "", zerolog.InfoLevel
		mu.Unlock()
	})
	return &buf
}

func TestZerologLoggerJSON(t *testing.T) {
	buf := capture(t, Config{Level: "debug", Format: FormatJSON})
	l := New("ir")
	l.Infof("transmitted %s", "0x0a90")
	l.Debugw("session transition", map[string]any{"to": "connected"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, "ir", m["component"])
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "transmitted 0x0a90", m["message"])
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &m))
	assert.Equal(t, "connected", m["to"])
}

func TestZerologLoggerLevel(t *testing.T) {
	buf := capture(t, Config{Level: "warn", Format: FormatJSON})
	l := New("bridge")
	l.Debugf("debug %d", 1)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestZerologLoggerConsole(t *testing.T) {
	buf := capture(t, Config{Level: "info", Format: FormatConsole})
	New("mqtt").Infof("connected")
	assert.Contains(t, buf.String(), "connected")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	var c Config
	c.SetDefaults()
	assert.Equal(t, "info", c.Level)
	assert.Equal(t, FormatConsole, c.Format)
	assert.NoError(t, c.Validate())

	assert.Error(t, Configure(Config{Level: "loud"}))
	assert.Error(t, Configure(Config{Level: "info", Format: "xml"}))
}

func TestConfigureFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "irbridge.log")
	require.NoError(t, Configure(Config{Level: "info", Format: FormatJSON, File: path}))
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		mu.Lock()
		format, level = "", zerolog.InfoLevel
		mu.Unlock()
	})

	New("cmd").Infof("started")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"started"`)
	assert.Contains(t, string(data), `"component":"cmd"`)
}

func TestConfigRotationDefaults(t *testing.T) {
	c := Config{File: "irbridge.log"}
	c.SetDefaults()
	assert.Equal(t, 10, c.MaxSizeMB)
	assert.NoError(t, c.Validate())

	c.MaxBackups = -1
	assert.Error(t, c.Validate())
}
