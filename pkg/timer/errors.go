package timer

import "errors"

// Controller errors.
var (
	// ErrAlreadyRunning is returned when Run or Continue is called on a
	// controller whose loop is still active.
	ErrAlreadyRunning = errors.New("timer already running")

	// ErrKeyInUse is returned when another controller is registered as
	// running under the same key.
	ErrKeyInUse = errors.New("timer key in use")

	// ErrStorage wraps failures of the persistence store.
	ErrStorage = errors.New("timer storage failure")

	// ErrNoStore is returned by NewManager when Config.Store is nil.
	ErrNoStore = errors.New("timer store not configured")

	// ErrInvalidTickInterval is returned by NewManager for a negative
	// tick interval.
	ErrInvalidTickInterval = errors.New("invalid tick interval")
)
