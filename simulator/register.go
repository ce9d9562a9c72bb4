package simulator

import (
	"fmt"

	"github.com/kilianp07/irbridge/core/bridge"
	"github.com/kilianp07/irbridge/core/factory"
	"github.com/kilianp07/irbridge/core/ir"
)

// PeripheralConfig configures the "sim" bus driver.
type PeripheralConfig struct {
	Address       uint16  `json:"address"`
	WriteFailRate float64 `json:"write_fail_rate"`
	ReadFailRate  float64 `json:"read_fail_rate"`
}

// PinConfig configures the "sim" pin driver.
type PinConfig struct {
	Value bool `json:"value"`
}

// init registers the simulated bus and pin drivers.
func init() {
	_ = ir.RegisterBus("sim", func(raw map[string]any) (ir.BusCloser, error) {
		var c PeripheralConfig
		if err := factory.Decode(raw, &c); err != nil {
			return nil, fmt.Errorf("simulator: decode bus config: %w", err)
		}
		if c.Address == 0 {
			c.Address = ir.DefaultAddress
		}
		return NewPeripheral(c.Address, Faults{WriteRate: c.WriteFailRate, ReadRate: c.ReadFailRate}), nil
	})
	_ = bridge.RegisterPin("sim", func(raw map[string]any) (bridge.PinCloser, error) {
		var c PinConfig
		if err := factory.Decode(raw, &c); err != nil {
			return nil, fmt.Errorf("simulator: decode pin config: %w", err)
		}
		return NewPin(c.Value), nil
	})
}
