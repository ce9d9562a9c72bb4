package ir

// Bus is the two-wire bus capability used by the transactor. Implementations
// address a 7-bit peripheral and either write or read a whole buffer.
type Bus interface {
	// Write sends p to the peripheral at addr.
	Write(addr uint16, p []byte) error
	// Read fills p with len(p) bytes from the peripheral at addr.
	Read(addr uint16, p []byte) error
}

// BusCloser is a Bus owning an underlying handle.
type BusCloser interface {
	Bus
	Close() error
}
