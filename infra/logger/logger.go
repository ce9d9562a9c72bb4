package logger

import corelogger "github.com/kilianp07/irbridge/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// New returns a Logger for the given component, using the settings last
// passed to Configure. Without Configure the format follows APP_ENV.
func New(component string) Logger {
	return NewZerologLogger(component)
}
