package simulator

import "sync"

// Pin is a settable status input.
type Pin struct {
	mu     sync.Mutex
	value  bool
	err    error
	closed bool
}

// NewPin returns a pin reading v.
func NewPin(v bool) *Pin { return &Pin{value: v} }

func (p *Pin) Set(v bool) {
	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
}

// Fail makes every read return err until Fail(nil).
func (p *Pin) Fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *Pin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false, ErrClosed
	}
	if p.err != nil {
		return false, p.err
	}
	return p.value, nil
}

func (p *Pin) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
