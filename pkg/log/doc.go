// Package log provides a machine-readable event trace for tickdown timers.
//
// This package defines the Logger interface and Event types for capturing
// timer lifecycle transitions, ticks, persistence operations and errors.
// It is separate from operational logging (slog): the event trace is a
// complete record that can be read back and filtered after the fact.
//
// # Basic Usage
//
// Hosts configure the trace by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLog = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLog, _ = log.NewFileLogger("/var/log/tickdown/events.tlog")
//
//	// Both: use MultiLogger
//	cfg.EventLog = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every event carries the timer key and the RunID of the loop invocation
// that produced it. Exactly one payload is set:
//   - Lifecycle: state machine transitions (LifecycleEvent)
//   - Tick: one per second of countdown (TickEvent)
//   - Persist: record saved, loaded or deleted (PersistEvent)
//   - Error: failures (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR encoded events with the .tlog extension.
// The "tickdown events" command views and filters them.
package log
