package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/core/factory"
	"github.com/kilianp07/irbridge/core/ir"
	"github.com/kilianp07/irbridge/core/model"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTransactor(t *testing.T, p *Peripheral) *ir.Transactor {
	t.Helper()
	tx, err := ir.NewTransactor(p, ir.Config{}, nil, ir.WithSleep(noSleep))
	require.NoError(t, err)
	return tx
}

func TestPeripheralEchoesTransmittedCode(t *testing.T) {
	p := NewPeripheral(ir.DefaultAddress, Faults{})
	res := newTransactor(t, p).Transmit(context.Background(), model.PowerCode)

	require.True(t, res.Success)
	require.NoError(t, res.ReadErr)
	assert.Equal(t, uint16(0x0a90), res.Value)
	assert.Equal(t, []model.IRCode{model.PowerCode}, p.Sent())
	assert.Equal(t, []byte{0xff, 0x0a, 0x90}, p.Writes())
}

func TestPeripheralResetDiscardsPartialCode(t *testing.T) {
	p := NewPeripheral(0x26, Faults{})
	require.NoError(t, p.Write(0x26, []byte{0xff}))
	require.NoError(t, p.Write(0x26, []byte{0x01}))
	require.NoError(t, p.Write(0x26, []byte{0xff, 0x0a, 0x90}))
	assert.Equal(t, []model.IRCode{0x0a90}, p.Sent())
}

func TestPeripheralIgnoresBytesOutsideTransaction(t *testing.T) {
	p := NewPeripheral(0x26, Faults{})
	require.NoError(t, p.Write(0x26, []byte{'x', 0x01, 0x02}))
	assert.Empty(t, p.Sent())
}

func TestPeripheralNACKsOtherAddress(t *testing.T) {
	p := NewPeripheral(0x26, Faults{})
	assert.ErrorIs(t, p.Write(0x27, []byte{0xff}), ErrNACK)
	assert.ErrorIs(t, p.Read(0x27, make([]byte, 2)), ErrNACK)
	assert.Empty(t, p.Writes())
}

func TestReadFailureTriggersSync(t *testing.T) {
	p := NewPeripheral(0x26, Faults{})
	p.FailNextReads(1)

	res := newTransactor(t, p).Transmit(context.Background(), model.PowerCode)
	assert.True(t, res.Success)
	assert.ErrorIs(t, res.ReadErr, ErrInjected)
	assert.True(t, res.Resynced)
	assert.Equal(t, []byte{0xff, 0x0a, 0x90, 'x'}, p.Writes())
}

func TestWriteFailureAbortsTransaction(t *testing.T) {
	p := NewPeripheral(0x26, Faults{})
	p.FailNextWrites(1)

	res := newTransactor(t, p).Transmit(context.Background(), model.PowerCode)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ir.ErrWriteFailed)
	assert.Empty(t, p.Writes())
	assert.Empty(t, p.Sent())
}

func TestRandomFaults(t *testing.T) {
	p := NewPeripheral(0x26, Faults{WriteRate: 0.5, ReadRate: 0.5})
	p.randFloat = func() float64 { return 0.1 }
	assert.ErrorIs(t, p.Write(0x26, []byte{0xff}), ErrInjected)
	assert.ErrorIs(t, p.Read(0x26, make([]byte, 2)), ErrInjected)

	p.randFloat = func() float64 { return 0.9 }
	assert.NoError(t, p.Write(0x26, []byte{0xff}))
	assert.NoError(t, p.Read(0x26, make([]byte, 2)))
}

func TestClosedPeripheral(t *testing.T) {
	p := NewPeripheral(0x26, Faults{})
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Write(0x26, []byte{0xff}), ErrClosed)
}

func TestPin(t *testing.T) {
	p := NewPin(false)
	v, err := p.Read()
	require.NoError(t, err)
	assert.False(t, v)

	p.Set(true)
	v, err = p.Read()
	require.NoError(t, err)
	assert.True(t, v)

	boom := errors.New("boom")
	p.Fail(boom)
	_, err = p.Read()
	assert.ErrorIs(t, err, boom)
	p.Fail(nil)

	require.NoError(t, p.Close())
	_, err = p.Read()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegisteredDrivers(t *testing.T) {
	b, err := ir.OpenBus(factory.ModuleConfig{Type: "sim", Conf: map[string]any{"read_fail_rate": "0"}})
	require.NoError(t, err)
	assert.NoError(t, b.Write(ir.DefaultAddress, []byte{0xff}))

	pin, err := bridge.OpenPin(factory.ModuleConfig{Type: "sim", Conf: map[string]any{"value": true}})
	require.NoError(t, err)
	v, err := pin.Read()
	require.NoError(t, err)
	assert.True(t, v)
}
