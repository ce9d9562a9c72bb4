// Package factory provides a small generic registry used to instantiate
// pluggable drivers from configuration. A driver is selected by a type string
// and configured by a map of raw settings which the factory decodes into its
// own typed struct.
//
// Example usage:
//
//	reg := factory.NewRegistry[ir.BusCloser]()
//	reg.Register("sim", func(conf map[string]any) (ir.BusCloser, error) {
//	    var c struct{ FailReads int `json:"fail_reads"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return simulator.NewPeripheral(c.FailReads), nil
//	})
//	b, err := reg.Create(factory.ModuleConfig{Type: "sim"})
package factory
