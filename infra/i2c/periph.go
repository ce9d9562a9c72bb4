package i2c

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/kilianp07/irbridge/core/factory"
	"github.com/kilianp07/irbridge/core/ir"
	"github.com/kilianp07/irbridge/core/logger"
	zlog "github.com/kilianp07/irbridge/infra/logger"
)

// DefaultSpeedHz is the standard-mode clock the transmitter firmware expects.
const DefaultSpeedHz int64 = 100_000

// Config selects the host bus. An empty Bus picks the first one registered.
type Config struct {
	Bus     string `json:"bus"`
	SpeedHz int64  `json:"speed_hz"`
}

// SetDefaults applies the 100 kHz standard-mode bus speed.
func (c *Config) SetDefaults() {
	if c.SpeedHz <= 0 {
		c.SpeedHz = DefaultSpeedHz
	}
}

var (
	initOnce sync.Once
	initErr  error
)

// openHostBus is replaced in tests.
var openHostBus = func(name string) (i2c.BusCloser, error) {
	initOnce.Do(func() {
		_, initErr = host.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("i2c: host init: %w", initErr)
	}
	return i2creg.Open(name)
}

// PeriphBus adapts a periph bus to ir.BusCloser.
type PeriphBus struct {
	bus i2c.BusCloser
	log logger.Logger
}

// Open opens the configured bus. A rejected clock speed is logged and the
// bus is used at its current speed.
func Open(cfg Config, log logger.Logger) (*PeriphBus, error) {
	cfg.SetDefaults()
	log = logger.OrNop(log)
	b, err := openHostBus(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %q: %w", cfg.Bus, err)
	}
	if err := b.SetSpeed(physic.Frequency(cfg.SpeedHz) * physic.Hertz); err != nil {
		log.Warnf("i2c: set speed %d Hz on %s: %v", cfg.SpeedHz, b, err)
	}
	log.Infof("i2c: opened %s", b)
	return &PeriphBus{bus: b, log: log}, nil
}

func (p *PeriphBus) Write(addr uint16, data []byte) error { return p.bus.Tx(addr, data, nil) }
func (p *PeriphBus) Read(addr uint16, data []byte) error  { return p.bus.Tx(addr, nil, data) }
func (p *PeriphBus) Close() error                         { return p.bus.Close() }
func (p *PeriphBus) String() string                       { return p.bus.String() }

// init registers the periph bus driver.
func init() {
	_ = ir.RegisterBus("periph", func(raw map[string]any) (ir.BusCloser, error) {
		var cfg Config
		if err := factory.Decode(raw, &cfg); err != nil {
			return nil, fmt.Errorf("i2c: decode config: %w", err)
		}
		return Open(cfg, zlog.New("i2c"))
	})
}
