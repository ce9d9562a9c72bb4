package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/irbridge/core/factory"
	"github.com/kilianp07/irbridge/core/ir"
	"github.com/kilianp07/irbridge/core/model"
)

// BridgeConfig holds the loop and reconnect timing and the command code.
type BridgeConfig struct {
	PowerCode          string `json:"power_code"`
	TickMS             int    `json:"tick_ms"`
	ReconnectBackoffMS int    `json:"reconnect_backoff_ms"`
}

func (c *BridgeConfig) SetDefaults() {
	if c.PowerCode == "" {
		c.PowerCode = model.PowerCode.String()
	}
	if c.TickMS == 0 {
		c.TickMS = 1000
	}
	if c.ReconnectBackoffMS == 0 {
		c.ReconnectBackoffMS = 1000
	}
}

func (c BridgeConfig) Validate() error {
	if _, err := model.ParseIRCode(c.PowerCode); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	if c.TickMS <= 0 {
		return fmt.Errorf("bridge: tick_ms must be positive, got %d", c.TickMS)
	}
	if c.ReconnectBackoffMS <= 0 {
		return fmt.Errorf("bridge: reconnect_backoff_ms must be positive, got %d", c.ReconnectBackoffMS)
	}
	return nil
}

// Code returns the parsed power code. Call after Validate.
func (c BridgeConfig) Code() model.IRCode {
	code, _ := model.ParseIRCode(c.PowerCode)
	return code
}

func (c BridgeConfig) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

func (c BridgeConfig) Backoff() time.Duration {
	return time.Duration(c.ReconnectBackoffMS) * time.Millisecond
}

// BusConfig selects the bus driver and the transmitter's transaction
// parameters.
type BusConfig struct {
	Type        string         `json:"type"`
	Conf        map[string]any `json:"conf"`
	Address     uint16         `json:"address"`
	ByteDelayMS int            `json:"byte_delay_ms"`
	SyncByte    uint8          `json:"sync_byte"`
}

func (c *BusConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "periph"
	}
	if c.Address == 0 {
		c.Address = ir.DefaultAddress
	}
	if c.ByteDelayMS == 0 {
		c.ByteDelayMS = int(ir.DefaultByteDelay / time.Millisecond)
	}
	if c.SyncByte == 0 {
		c.SyncByte = ir.DefaultSyncByte
	}
}

func (c BusConfig) Validate() error {
	if c.ByteDelayMS < 0 {
		return fmt.Errorf("bus: byte_delay_ms must not be negative, got %d", c.ByteDelayMS)
	}
	return c.Transactor().Validate()
}

// Module returns the driver selection for ir.OpenBus.
func (c BusConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Type, Conf: c.Conf}
}

// Transactor returns the transaction parameters.
func (c BusConfig) Transactor() ir.Config {
	return ir.Config{
		Address:   c.Address,
		ByteDelay: time.Duration(c.ByteDelayMS) * time.Millisecond,
		SyncByte:  c.SyncByte,
	}
}

// GPIOConfig selects the status input driver.
type GPIOConfig factory.ModuleConfig

func (c *GPIOConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "cdev"
	}
}

// Module returns the driver selection for bridge.OpenPin.
func (c GPIOConfig) Module() factory.ModuleConfig { return factory.ModuleConfig(c) }
