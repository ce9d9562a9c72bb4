package bridge

import "github.com/kilianp07/irbridge/core/factory"

// PinCloser is a Pin owning an underlying handle.
type PinCloser interface {
	Pin
	Close() error
}

var pinRegistry = factory.NewRegistry[PinCloser]()

// RegisterPin adds a pin driver factory identified by name.
func RegisterPin(name string, f factory.Factory[PinCloser]) error {
	return pinRegistry.Register(name, f)
}

// OpenPin opens the pin driver selected by cfg.
func OpenPin(cfg factory.ModuleConfig) (PinCloser, error) {
	return pinRegistry.Create(cfg)
}

// PinTypes lists the registered pin drivers.
func PinTypes() []string { return pinRegistry.Types() }
