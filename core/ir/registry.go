package ir

import "github.com/kilianp07/irbridge/core/factory"

var busRegistry = factory.NewRegistry[BusCloser]()

// RegisterBus adds a bus driver factory identified by name.
func RegisterBus(name string, f factory.Factory[BusCloser]) error {
	return busRegistry.Register(name, f)
}

// OpenBus opens the bus driver selected by cfg.
func OpenBus(cfg factory.ModuleConfig) (BusCloser, error) {
	return busRegistry.Create(cfg)
}

// BusTypes lists the registered bus drivers.
func BusTypes() []string { return busRegistry.Types() }
