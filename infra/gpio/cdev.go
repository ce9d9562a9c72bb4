package gpio

import (
	"errors"
	"fmt"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"

	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/core/factory"
	"github.com/kilianp07/irbridge/core/logger"
	zlog "github.com/kilianp07/irbridge/infra/logger"
)

// DefaultChip is the first GPIO character device.
const DefaultChip = "gpiochip0"

// ErrClosed is returned when reading a released line.
var ErrClosed = errors.New("gpio: line closed")

// Config identifies the status input line.
type Config struct {
	Chip      string `json:"chip"`
	Line      int    `json:"line"`
	ActiveLow bool   `json:"active_low"`
}

// SetDefaults selects gpiochip0 when no chip is named.
func (c *Config) SetDefaults() {
	if c.Chip == "" {
		c.Chip = DefaultChip
	}
}

// Validate rejects negative line offsets.
func (c Config) Validate() error {
	if c.Line < 0 {
		return fmt.Errorf("gpio: negative line offset %d", c.Line)
	}
	return nil
}

type line interface {
	Value() (int, error)
	Close() error
}

// requestLine is replaced in tests.
var requestLine = func(cfg Config) (line, error) {
	chip, err := gpiod.NewChip(cfg.Chip, gpiod.WithConsumer("irbridge"))
	if err != nil {
		return nil, err
	}
	defer chip.Close()
	opts := []gpiod.LineReqOption{gpiod.AsInput}
	if cfg.ActiveLow {
		opts = append(opts, gpiod.AsActiveLow)
	}
	return chip.RequestLine(cfg.Line, opts...)
}

// CdevPin reads the device status input through the GPIO character device.
type CdevPin struct {
	cfg Config
	log logger.Logger

	mu sync.Mutex
	l  line
}

// Open requests the configured line as an input.
func Open(cfg Config, log logger.Logger) (*CdevPin, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := requestLine(cfg)
	if err != nil {
		return nil, fmt.Errorf("gpio: request %s/%d: %w", cfg.Chip, cfg.Line, err)
	}
	log = logger.OrNop(log)
	log.Infof("gpio: watching %s line %d (active_low=%t)", cfg.Chip, cfg.Line, cfg.ActiveLow)
	return &CdevPin{cfg: cfg, log: log, l: l}, nil
}

// Read reports whether the line is active.
func (p *CdevPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.l == nil {
		return false, ErrClosed
	}
	v, err := p.l.Value()
	if err != nil {
		return false, fmt.Errorf("gpio: read %s/%d: %w", p.cfg.Chip, p.cfg.Line, err)
	}
	return v != 0, nil
}

// Close releases the line. Further reads fail with ErrClosed.
func (p *CdevPin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.l == nil {
		return nil
	}
	err := p.l.Close()
	p.l = nil
	return err
}

// init registers the cdev pin driver.
func init() {
	_ = bridge.RegisterPin("cdev", func(raw map[string]any) (bridge.PinCloser, error) {
		var cfg Config
		if err := factory.Decode(raw, &cfg); err != nil {
			return nil, fmt.Errorf("gpio: decode config: %w", err)
		}
		return Open(cfg, zlog.New("gpio"))
	})
}
