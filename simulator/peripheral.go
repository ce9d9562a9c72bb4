package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/kilianp07/irbridge/core/ir"
	"github.com/kilianp07/irbridge/core/model"
)

var (
	// ErrNACK is returned for transfers addressed to another device.
	ErrNACK = errors.New("simulator: no acknowledge")
	// ErrInjected is returned by injected faults.
	ErrInjected = errors.New("simulator: injected fault")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("simulator: closed")
)

// Faults describes random failure injection. Rates are probabilities in
// [0,1] applied to each transfer.
type Faults struct {
	WriteRate float64
	ReadRate  float64
}

// Peripheral emulates the ATtiny85 transmitter. A reset byte clears the
// receive buffer, the next two bytes form a code which is "sent", and a read
// returns the last sent code.
type Peripheral struct {
	mu         sync.Mutex
	addr       uint16
	faults     Faults
	failWrites int
	failReads  int
	buf        []byte
	armed      bool
	last       model.IRCode
	sent       []model.IRCode
	writes     []byte
	closed     bool
	randFloat  func() float64
}

// NewPeripheral returns a peripheral answering at addr.
func NewPeripheral(addr uint16, f Faults) *Peripheral {
	return &Peripheral{addr: addr, faults: f, randFloat: rand.Float64}
}

// FailNextWrites makes the next n writes fail.
func (p *Peripheral) FailNextWrites(n int) {
	p.mu.Lock()
	p.failWrites = n
	p.mu.Unlock()
}

// FailNextReads makes the next n reads fail.
func (p *Peripheral) FailNextReads(n int) {
	p.mu.Lock()
	p.failReads = n
	p.mu.Unlock()
}

func (p *Peripheral) Write(addr uint16, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(addr); err != nil {
		return err
	}
	if p.failWrites > 0 {
		p.failWrites--
		return fmt.Errorf("write: %w", ErrInjected)
	}
	if p.faults.WriteRate > 0 && p.randFloat() < p.faults.WriteRate {
		return fmt.Errorf("write: %w", ErrInjected)
	}
	for _, b := range data {
		p.writes = append(p.writes, b)
		p.receive(b)
	}
	return nil
}

func (p *Peripheral) receive(b byte) {
	if b == ir.ResetByte {
		p.buf = p.buf[:0]
		p.armed = true
		return
	}
	if !p.armed {
		// Sync bytes and stray data outside a transaction are discarded.
		return
	}
	p.buf = append(p.buf, b)
	if len(p.buf) == 2 {
		p.last = model.IRCode(uint16(p.buf[0])<<8 | uint16(p.buf[1]))
		p.sent = append(p.sent, p.last)
		p.buf = p.buf[:0]
		p.armed = false
	}
}

func (p *Peripheral) Read(addr uint16, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(addr); err != nil {
		return err
	}
	if p.failReads > 0 {
		p.failReads--
		return fmt.Errorf("read: %w", ErrInjected)
	}
	if p.faults.ReadRate > 0 && p.randFloat() < p.faults.ReadRate {
		return fmt.Errorf("read: %w", ErrInjected)
	}
	word := [2]byte{p.last.High(), p.last.Low()}
	for i := range data {
		if i < len(word) {
			data[i] = word[i]
		} else {
			data[i] = 0
		}
	}
	return nil
}

func (p *Peripheral) check(addr uint16) error {
	if p.closed {
		return ErrClosed
	}
	if addr != p.addr {
		return fmt.Errorf("%w at 0x%02x", ErrNACK, addr)
	}
	return nil
}

func (p *Peripheral) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Sent returns the codes transmitted so far.
func (p *Peripheral) Sent() []model.IRCode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.IRCode(nil), p.sent...)
}

// Writes returns every byte accepted by the peripheral, in order.
func (p *Peripheral) Writes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.writes...)
}
