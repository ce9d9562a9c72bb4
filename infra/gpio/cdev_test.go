package gpio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/core/factory"
)

type fakeLine struct {
	value  int
	err    error
	closed bool
}

func (f *fakeLine) Value() (int, error) { return f.value, f.err }
func (f *fakeLine) Close() error        { f.closed = true; return nil }

func withLine(t *testing.T, l *fakeLine, got *Config) {
	t.Helper()
	orig := requestLine
	requestLine = func(cfg Config) (line, error) {
		if got != nil {
			*got = cfg
		}
		return l, nil
	}
	t.Cleanup(func() { requestLine = orig })
}

func TestCdevPinRead(t *testing.T) {
	l := &fakeLine{value: 1}
	withLine(t, l, nil)

	p, err := Open(Config{Line: 17}, nil)
	require.NoError(t, err)

	on, err := p.Read()
	require.NoError(t, err)
	assert.True(t, on)

	l.value = 0
	on, err = p.Read()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestCdevPinReadError(t *testing.T) {
	l := &fakeLine{err: errors.New("EIO")}
	withLine(t, l, nil)

	p, err := Open(Config{}, nil)
	require.NoError(t, err)
	_, err = p.Read()
	assert.ErrorContains(t, err, "gpiochip0/0")
}

func TestCdevPinClose(t *testing.T) {
	l := &fakeLine{}
	withLine(t, l, nil)

	p, err := Open(Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.True(t, l.closed)
	_, err = p.Read()
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, p.Close())
}

func TestOpenRequestError(t *testing.T) {
	orig := requestLine
	requestLine = func(Config) (line, error) { return nil, errors.New("busy") }
	t.Cleanup(func() { requestLine = orig })

	_, err := Open(Config{Chip: "gpiochip1", Line: 4}, nil)
	assert.ErrorContains(t, err, "gpiochip1/4")
}

func TestOpenRejectsNegativeLine(t *testing.T) {
	_, err := Open(Config{Line: -1}, nil)
	assert.Error(t, err)
}

func TestRegisteredDriverDecodesConfig(t *testing.T) {
	var got Config
	withLine(t, &fakeLine{value: 1}, &got)

	assert.Contains(t, bridge.PinTypes(), "cdev")
	p, err := bridge.OpenPin(factory.ModuleConfig{
		Type: "cdev",
		Conf: map[string]any{"chip": "gpiochip2", "line": "22", "active_low": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, Config{Chip: "gpiochip2", Line: 22, ActiveLow: true}, got)
	on, err := p.Read()
	require.NoError(t, err)
	assert.True(t, on)
}
