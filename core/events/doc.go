// Package events defines the bridge events emitted on the event bus.
//
// Available event types:
//   - StatusEvent: pin read and status publish outcome of one tick
//   - CommandEvent: inbound command message and whether it was accepted
//   - TransmitEvent: result of one IR bus transaction
//   - SessionEvent: broker session state transition
package events

// Event is implemented by every bridge event.
type Event interface {
	Kind() string
}
