package model

import (
	"fmt"
	"strconv"
	"strings"
)

// IRCode is a 16-bit encoded infrared command understood by the transmitter
// peripheral.
type IRCode uint16

// PowerCode toggles power on Sony devices (12-bit SIRC).
const PowerCode IRCode = 0x0a90

// High returns the most significant byte of the code.
func (c IRCode) High() byte { return byte(c >> 8) }

// Low returns the least significant byte of the code.
func (c IRCode) Low() byte { return byte(c & 0xff) }

func (c IRCode) String() string { return fmt.Sprintf("0x%04x", uint16(c)) }

// ParseIRCode parses a code written in decimal, hex (0x), octal (0o) or
// binary (0b) notation.
func ParseIRCode(s string) (IRCode, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid ir code %q: %w", s, err)
	}
	return IRCode(v), nil
}
