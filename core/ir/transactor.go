package ir

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/irbridge/core/logger"
	"github.com/kilianp07/irbridge/core/model"
	"github.com/kilianp07/irbridge/core/monitoring"
	"github.com/kilianp07/irbridge/internal/clock"
)

const (
	// DefaultAddress is the 7-bit address of the ATtiny85 transmitter.
	DefaultAddress uint16 = 0x26
	// DefaultByteDelay is the peripheral's per-frame processing latency.
	DefaultByteDelay = 100 * time.Millisecond
	// ResetByte starts every transaction.
	ResetByte byte = 0xff
	// DefaultSyncByte realigns the peripheral after a failed read.
	DefaultSyncByte byte = 'x'
	// ResultSize is the length of the peripheral's result word.
	ResultSize = 2
)

var (
	// ErrWriteFailed wraps a bus error on one of the three command frames.
	ErrWriteFailed = errors.New("ir: bus write failed")
	// ErrReadFailed wraps a bus error on the result read.
	ErrReadFailed = errors.New("ir: bus read failed")
)

// Config holds the transaction parameters.
type Config struct {
	Address   uint16
	ByteDelay time.Duration
	SyncByte  byte
}

// SetDefaults fills zero values. A zero SyncByte is a valid byte but never
// configured deliberately, so it is replaced too.
func (c *Config) SetDefaults() {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.ByteDelay <= 0 {
		c.ByteDelay = DefaultByteDelay
	}
	if c.SyncByte == 0 {
		c.SyncByte = DefaultSyncByte
	}
}

// Validate checks the address fits in 7 bits.
func (c Config) Validate() error {
	if c.Address > 0x7f {
		return fmt.Errorf("ir: address 0x%x exceeds 7 bits", c.Address)
	}
	return nil
}

// Transactor executes transactions against the IR peripheral. It holds no
// state across calls apart from the lock serializing them.
type Transactor struct {
	bus   Bus
	cfg   Config
	log   logger.Logger
	sleep clock.SleepFunc
	now   func() time.Time

	mu sync.Mutex
}

// Option customizes a Transactor.
type Option func(*Transactor)

// WithSleep replaces the inter-frame delay implementation.
func WithSleep(s clock.SleepFunc) Option {
	return func(t *Transactor) { t.sleep = s }
}

// WithClock replaces the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Transactor) { t.now = now }
}

// NewTransactor creates a Transactor for the peripheral described by cfg.
func NewTransactor(bus Bus, cfg Config, log logger.Logger, opts ...Option) (*Transactor, error) {
	if bus == nil {
		return nil, fmt.Errorf("ir: nil bus")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Transactor{
		bus:   bus,
		cfg:   cfg,
		log:   logger.OrNop(log),
		sleep: clock.Sleep,
		now:   time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Address returns the peripheral address.
func (t *Transactor) Address() uint16 { return t.cfg.Address }

// Transmit sends code to the peripheral. Transactions are serialized; a
// second caller blocks until the first completes.
func (t *Transactor) Transmit(ctx context.Context, code model.IRCode) model.TransmitResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := model.TransmitResult{ID: uuid.NewString(), Code: code, Started: t.now()}
	frames := [...]byte{ResetByte, code.High(), code.Low()}
	for i, b := range frames {
		if err := t.bus.Write(t.cfg.Address, []byte{b}); err != nil {
			res.Err = fmt.Errorf("%w: frame %d (0x%02x): %w", ErrWriteFailed, i, b, err)
			t.log.Errorf("i2c write error on %s: %v", code, res.Err)
			monitoring.Capture(monitoring.ModuleI2C, res.Err, "step", "write", "code", code.String())
			return t.finish(res)
		}
		if err := t.sleep(ctx, t.cfg.ByteDelay); err != nil {
			res.Err = fmt.Errorf("ir: transaction for %s interrupted: %w", code, err)
			return t.finish(res)
		}
	}
	res.Success = true

	buf := make([]byte, ResultSize)
	if err := t.bus.Read(t.cfg.Address, buf); err != nil {
		res.ReadErr = fmt.Errorf("%w: %w", ErrReadFailed, err)
		t.log.Warnf("i2c read error on %s: %v", code, err)
		monitoring.Capture(monitoring.ModuleI2C, res.ReadErr, "step", "read", "code", code.String())
		if werr := t.bus.Write(t.cfg.Address, []byte{t.cfg.SyncByte}); werr != nil {
			t.log.Errorf("i2c sync write error: %v", werr)
		} else {
			res.Resynced = true
		}
		return t.finish(res)
	}
	res.Value = uint16(buf[0])<<8 | uint16(buf[1])
	t.log.Infof("transmitted %s, result %04x", code, res.Value)
	return t.finish(res)
}

func (t *Transactor) finish(res model.TransmitResult) model.TransmitResult {
	res.Duration = t.now().Sub(res.Started)
	return res
}
