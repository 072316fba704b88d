package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/tickdown/tickdown-go/pkg/duration"
)

// Event represents a timer event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies the loop invocation (UUID). Empty for events
	// outside a loop, such as a delete issued by the host.
	RunID string `cbor:"2,keyasint,omitempty"`

	// Key is the timer key.
	Key string `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Lifecycle *LifecycleEvent `cbor:"10,keyasint,omitempty"`
	Tick      *TickEvent      `cbor:"11,keyasint,omitempty"`
	Persist   *PersistEvent   `cbor:"12,keyasint,omitempty"`
	Error     *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle indicates a state machine transition.
	CategoryLifecycle Category = 0
	// CategoryTick indicates one second of countdown.
	CategoryTick Category = 1
	// CategoryPersist indicates a storage operation.
	CategoryPersist Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryTick:
		return "TICK"
	case CategoryPersist:
		return "PERSIST"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIFECYCLE", "STATE":
		return CategoryLifecycle, nil
	case "TICK":
		return CategoryTick, nil
	case "PERSIST":
		return CategoryPersist, nil
	case "ERROR":
		return CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// LifecycleEvent captures a timer state transition.
type LifecycleEvent struct {
	// OldState is the previous state.
	OldState string `cbor:"1,keyasint"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`

	// Remaining is the duration left at the transition.
	Remaining duration.Duration `cbor:"4,keyasint"`
}

// TickEvent captures one decrement of the countdown.
type TickEvent struct {
	// Sequence counts ticks within the run, starting at 1.
	Sequence uint32 `cbor:"1,keyasint"`

	// Remaining is the duration left after the tick.
	Remaining duration.Duration `cbor:"2,keyasint"`
}

// PersistOp identifies a storage operation.
type PersistOp uint8

const (
	// PersistSave indicates the record was written.
	PersistSave PersistOp = 0
	// PersistLoad indicates the record was read.
	PersistLoad PersistOp = 1
	// PersistDelete indicates the record was removed.
	PersistDelete PersistOp = 2
)

// String returns the operation name.
func (p PersistOp) String() string {
	switch p {
	case PersistSave:
		return "SAVE"
	case PersistLoad:
		return "LOAD"
	case PersistDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// PersistEvent captures a storage operation on the timer record.
type PersistEvent struct {
	// Op is the storage operation.
	Op PersistOp `cbor:"1,keyasint"`

	// Remaining is the duration saved or loaded.
	Remaining duration.Duration `cbor:"2,keyasint"`

	// Found reports whether a record existed (load and delete only).
	Found bool `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors.
type ErrorEventData struct {
	// Op describes what operation was being performed.
	Op string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
