package session

import "context"

// Transport is the broker connection the Supervisor drives.
type Transport interface {
	// Connect opens a non-clean session. sessionPresent reports whether the
	// broker continued an existing session.
	Connect(ctx context.Context) (sessionPresent bool, err error)
	// Subscribe registers the command subscription.
	Subscribe(ctx context.Context, topic string) error
}
