package app

import (
	"fmt"

	"github.com/kilianp07/irbridge/config"
	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/core/ir"
	coremetrics "github.com/kilianp07/irbridge/core/metrics"
	"github.com/kilianp07/irbridge/infra/logger"

	// Register the built-in bus, pin and metrics drivers.
	_ "github.com/kilianp07/irbridge/infra/gpio"
	_ "github.com/kilianp07/irbridge/infra/i2c"
	_ "github.com/kilianp07/irbridge/infra/metrics"
	_ "github.com/kilianp07/irbridge/simulator"
)

// OpenTransactor opens the configured bus and returns a transactor on it.
// The caller owns the returned bus.
func OpenTransactor(cfg *config.Config) (*ir.Transactor, ir.BusCloser, error) {
	b, err := ir.OpenBus(cfg.Bus.Module())
	if err != nil {
		return nil, nil, fmt.Errorf("open bus: %w", err)
	}
	tx, err := ir.NewTransactor(b, cfg.Bus.Transactor(), logger.New("ir"))
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return tx, b, nil
}

// OpenPin opens the configured status input.
func OpenPin(cfg *config.Config) (bridge.PinCloser, error) {
	p, err := bridge.OpenPin(cfg.GPIO.Module())
	if err != nil {
		return nil, fmt.Errorf("open pin: %w", err)
	}
	return p, nil
}

// DriverSet names the registered drivers of one kind.
type DriverSet struct {
	Kind  string
	Types []string
}

// Drivers lists every registered driver.
func Drivers() []DriverSet {
	return []DriverSet{
		{Kind: "bus", Types: ir.BusTypes()},
		{Kind: "gpio", Types: bridge.PinTypes()},
		{Kind: "metrics", Types: coremetrics.SinkTypes()},
	}
}
