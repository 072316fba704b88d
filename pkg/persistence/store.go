package persistence

import (
	"time"

	"github.com/tickdown/tickdown-go/pkg/duration"
)

// Store is a durable key-value store of timer records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes remaining and now as the record for key, replacing any
	// previous record in a single step.
	Save(key string, remaining duration.Duration, now time.Time) error

	// Load returns the record for key.
	// Returns nil, nil if no record exists.
	Load(key string) (*Record, error)

	// Delete removes the record for key and reports whether one existed.
	Delete(key string) (bool, error)

	// Exists reports whether a record for key exists.
	Exists(key string) (bool, error)

	// Keys returns all keys with a record, sorted.
	Keys() ([]string, error)

	// Close releases resources held by the store.
	Close() error
}
