package log

// Logger is the interface hosts implement to receive timer events.
// Pass nil or NoopLogger to disable the trace.
type Logger interface {
	// Log records a timer event. Implementations must be thread-safe.
	// Events are logged from the tick loop; blocking delays the next tick.
	Log(event Event)
}

// NoopLogger discards all events. Use when the trace is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
