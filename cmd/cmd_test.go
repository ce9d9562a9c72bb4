package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSimConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `bus:
  type: sim
  byte_delay_ms: 1
gpio:
  type: sim
  conf:
    value: true
journal:
  backend: jsonl
  path: ` + filepath.Join(dir, "journal.jsonl") + "\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSendCommand(t *testing.T) {
	path := writeSimConfig(t, "")
	out, err := execute(t, "-c", path, "send")
	require.NoError(t, err)
	assert.Equal(t, "sent 0x0a90, result 0x0a90 (resynced=false)\n", out)

	out, err = execute(t, "-c", path, "send", "0x0123")
	require.NoError(t, err)
	assert.Contains(t, out, "result 0x0123")
}

func TestSendCommandBadCode(t *testing.T) {
	_, err := execute(t, "-c", writeSimConfig(t, ""), "send", "zz")
	assert.Error(t, err)
}

func TestPinCommand(t *testing.T) {
	out, err := execute(t, "-c", writeSimConfig(t, ""), "pin")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestJournalCommandEmpty(t *testing.T) {
	out, err := execute(t, "-c", writeSimConfig(t, ""), "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
}

func TestJournalCommandDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus:\n  type: sim\n"), 0o644))
	_, err := execute(t, "-c", path, "journal")
	assert.ErrorContains(t, err, "journal disabled")
}

func TestDriversCommand(t *testing.T) {
	out, err := execute(t, "drivers")
	require.NoError(t, err)
	assert.Contains(t, out, "bus")
	assert.Contains(t, out, "sim")
}
