package events

import "github.com/kilianp07/irbridge/core/model"

// TransmitEvent carries the result of one bus transaction.
type TransmitEvent struct {
	Result model.TransmitResult
}

func (TransmitEvent) Kind() string { return "transmit" }
