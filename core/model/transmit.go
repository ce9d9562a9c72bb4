package model

import "time"

// TransmitResult describes the outcome of one bus transaction with the IR
// peripheral.
type TransmitResult struct {
	ID   string
	Code IRCode
	// Success is set once the reset, high and low frames were all written.
	Success bool
	// Value is the peripheral's result word. Only meaningful when ReadErr is nil.
	Value uint16
	// Resynced reports that the read failed and the sync byte was written.
	Resynced bool
	// Err holds the failure that aborted the transaction.
	Err error
	// ReadErr holds the diagnostic read failure. It does not clear Success.
	ReadErr  error
	Started  time.Time
	Duration time.Duration
}

// Transaction outcomes reported by Outcome.
const (
	OutcomeOK        = "ok"
	OutcomeReadError = "read_error"
	OutcomeFailed    = "failed"
)

// Outcome classifies the result for metrics and logs.
func (r TransmitResult) Outcome() string {
	switch {
	case !r.Success:
		return OutcomeFailed
	case r.ReadErr != nil:
		return OutcomeReadError
	default:
		return OutcomeOK
	}
}
