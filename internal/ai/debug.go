package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs of the AI subsystem.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles per-tick debug logs. Called from main after
// the config log level is known.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-tick debug logs are on.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
