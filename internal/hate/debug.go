package hate

import "sync/atomic"

// debugLoggingEnabled guards per-entry debug logs on the hot path.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables hate list debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if hate list debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
