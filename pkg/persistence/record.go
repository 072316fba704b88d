package persistence

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/tickdown/tickdown-go/pkg/duration"
)

// RecordVersion is the current version of the record format.
const RecordVersion = 1

// MaxKeyLength is the longest accepted timer key in bytes.
const MaxKeyLength = 128

// Store errors.
var (
	ErrInvalidKey    = errors.New("invalid timer key")
	ErrCorruptRecord = errors.New("corrupt timer record")
	ErrClosed        = errors.New("store closed")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Record is the persisted state of one timer.
type Record struct {
	// Version is the record format version.
	Version int `cbor:"1,keyasint" json:"version"`

	// Key identifies the timer.
	Key string `cbor:"2,keyasint" json:"key"`

	// Remaining is the duration left when the record was saved.
	Remaining duration.Duration `cbor:"3,keyasint" json:"remaining"`

	// SavedAt is the full calendar time of the save.
	SavedAt time.Time `cbor:"4,keyasint" json:"saved_at"`
}

// NewRecord creates a record for key saved at now.
func NewRecord(key string, remaining duration.Duration, now time.Time) *Record {
	return &Record{
		Version:   RecordVersion,
		Key:       key,
		Remaining: remaining,
		SavedAt:   now.Round(0), // strip the monotonic reading
	}
}

// ExpiresAt returns when the timer reaches zero if it had kept running
// since the save.
func (r *Record) ExpiresAt() time.Time {
	return r.SavedAt.Add(r.Remaining.TimeDuration())
}

// RemainingAt projects the remaining duration to now, subtracting the time
// that passed since the save. Clamps at zero.
func (r *Record) RemainingAt(now time.Time) duration.Duration {
	return duration.FromTimeDuration(r.ExpiresAt().Sub(now))
}

// maxRemainingSeconds is the longest remaining time a time.Duration can hold.
const maxRemainingSeconds = math.MaxInt64 / int64(time.Second)

// Validate checks that the record is complete and well formed.
func (r *Record) Validate() error {
	if r.Version < 1 || r.Version > RecordVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, r.Version)
	}
	if err := ValidateKey(r.Key); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	rem := r.Remaining
	if rem.Days < 0 || rem.Hours < 0 || rem.Minutes < 0 || rem.Seconds < 0 {
		return fmt.Errorf("%w: negative remaining %+v", ErrCorruptRecord, rem)
	}
	if !representable(rem) {
		return fmt.Errorf("%w: remaining %+v out of range", ErrCorruptRecord, rem)
	}
	if r.SavedAt.IsZero() {
		return fmt.Errorf("%w: missing save time", ErrCorruptRecord)
	}
	return nil
}

// representable reports whether rem fits in a time.Duration.
func representable(rem duration.Duration) bool {
	return int64(rem.Days) <= maxRemainingSeconds/duration.SecondsPerDay &&
		int64(rem.Hours) <= maxRemainingSeconds/duration.SecondsPerHour &&
		int64(rem.Minutes) <= maxRemainingSeconds/duration.SecondsPerMinute &&
		int64(rem.Seconds) <= maxRemainingSeconds &&
		rem.TotalSeconds() <= maxRemainingSeconds
}

// ValidateKey reports whether key can address a record. Keys are limited to
// letters, digits, '.', '_' and '-' so they map directly to file names.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, MaxKeyLength)
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
