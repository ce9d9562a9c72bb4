package mqtt

import "errors"

var (
	// ErrNotConnected is returned by operations needing an open connection.
	ErrNotConnected = errors.New("mqtt: not connected")
	// ErrConnectTimeout is returned when the broker does not answer in time.
	ErrConnectTimeout = errors.New("mqtt: timeout waiting for broker")
	// ErrConnectionLost is returned by Poll after the connection dropped.
	ErrConnectionLost = errors.New("mqtt: connection lost")
)
