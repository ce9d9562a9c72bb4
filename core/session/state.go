package session

// State is the broker session state owned by the Supervisor.
type State string

const (
	Disconnected State = "disconnected"
	Connecting   State = "connecting"
	Connected    State = "connected"
)

func (s State) String() string { return string(s) }

// Triggers driving the session state machine.
const (
	triggerConnect = "connect"
	triggerSucceed = "succeed"
	triggerRetry   = "retry"
	triggerAbort   = "abort"
	triggerLost    = "lost"
)
