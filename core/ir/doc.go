// Package ir drives the infrared transmitter peripheral on the two-wire bus.
//
// One transaction sends a 16-bit code as three single-byte writes (reset
// byte 0xFF, high byte, low byte), each followed by a fixed delay so the
// peripheral can process it, then reads a two-byte result word. The word is
// diagnostic only. A failed read is answered with a single sync byte write to
// realign the peripheral; nothing is retried beyond that.
//
// Write failures abort the transaction and are reported in the result. They
// never propagate as a fault to the caller.
package ir
