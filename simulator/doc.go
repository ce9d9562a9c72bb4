// Package simulator provides in-memory stand-ins for the IR transmitter and
// the status input so the bridge can run without hardware. Both register
// themselves as the "sim" bus and pin drivers.
package simulator
