package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"braces.dev/errtrace"
	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/tickdown/tickdown-go/pkg/duration"
)

// SQLiteStore keeps one row per timer key in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates a timer database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("opening database: %w", err))
	}

	// A single connection keeps ":memory:" databases shared and avoids
	// SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)

	if err := createTimerTables(db); err != nil {
		db.Close()
		return nil, errtrace.Wrap(err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTimerTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS timers (
			key      TEXT PRIMARY KEY,
			version  INTEGER NOT NULL,
			days     INTEGER NOT NULL,
			hours    INTEGER NOT NULL,
			minutes  INTEGER NOT NULL,
			seconds  INTEGER NOT NULL,
			saved_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Save upserts the row for key in one statement.
func (s *SQLiteStore) Save(key string, remaining duration.Duration, now time.Time) error {
	if err := ValidateKey(key); err != nil {
		return errtrace.Wrap(err)
	}

	r := NewRecord(key, remaining, now)
	_, err := s.db.Exec(`
		INSERT INTO timers (key, version, days, hours, minutes, seconds, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version  = excluded.version,
			days     = excluded.days,
			hours    = excluded.hours,
			minutes  = excluded.minutes,
			seconds  = excluded.seconds,
			saved_at = excluded.saved_at
	`, r.Key, r.Version, r.Remaining.Days, r.Remaining.Hours, r.Remaining.Minutes, r.Remaining.Seconds,
		r.SavedAt.Format(time.RFC3339Nano))
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("saving timer %q: %w", key, err))
	}
	return nil
}

// Load reads the row for key.
// Returns nil, nil if no row exists.
func (s *SQLiteStore) Load(key string) (*Record, error) {
	if err := ValidateKey(key); err != nil {
		return nil, errtrace.Wrap(err)
	}

	row := s.db.QueryRow(`
		SELECT key, version, days, hours, minutes, seconds, saved_at
		FROM timers WHERE key = ?
	`, key)

	var (
		r       Record
		savedAt string
	)
	err := row.Scan(&r.Key, &r.Version, &r.Remaining.Days, &r.Remaining.Hours,
		&r.Remaining.Minutes, &r.Remaining.Seconds, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("loading timer %q: %w", key, err))
	}

	r.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%w: saved_at %q: %w", ErrCorruptRecord, savedAt, err))
	}
	if err := r.Validate(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &r, nil
}

// Delete removes the row for key.
func (s *SQLiteStore) Delete(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, errtrace.Wrap(err)
	}

	res, err := s.db.Exec(`DELETE FROM timers WHERE key = ?`, key)
	if err != nil {
		return false, errtrace.Wrap(fmt.Errorf("deleting timer %q: %w", key, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errtrace.Wrap(err)
	}
	return n > 0, nil
}

// Exists reports whether a row exists for key.
func (s *SQLiteStore) Exists(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, errtrace.Wrap(err)
	}

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM timers WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, errtrace.Wrap(err)
	}
	return n > 0, nil
}

// Keys lists all stored keys in order.
func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM timers ORDER BY key`)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("listing timers: %w", err))
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errtrace.Wrap(err)
		}
		keys = append(keys, key)
	}
	return keys, errtrace.Wrap(rows.Err())
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return errtrace.Wrap(s.db.Close())
}

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)
