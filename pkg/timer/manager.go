package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tickdown/tickdown-go/pkg/clock"
	"github.com/tickdown/tickdown-go/pkg/log"
	"github.com/tickdown/tickdown-go/pkg/persistence"
)

// DefaultTickInterval is the time between two decrements of a countdown.
const DefaultTickInterval = time.Second

// Config configures a Manager.
type Config struct {
	// Store persists remaining durations. Required.
	Store persistence.Store

	// Clock is the time source. Defaults to the real clock.
	Clock clock.Clock

	// TickInterval is the wait between ticks. Defaults to one second.
	TickInterval time.Duration

	// Logger is the optional logger for operational messages.
	// If nil, no logging is performed.
	Logger *slog.Logger

	// EventLog receives the structured timer event trace.
	// If nil, no events are recorded.
	EventLog log.Logger
}

// DefaultConfig returns a Config with the real clock and a one second tick.
// Store must still be set.
func DefaultConfig() Config {
	return Config{
		Clock:        clock.Real(),
		TickInterval: DefaultTickInterval,
	}
}

// Manager owns the registry of running timers and the collaborators shared
// by all controllers. It is safe for concurrent use.
type Manager struct {
	store    persistence.Store
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger
	events   log.Logger
	registry *Registry
}

// NewManager creates a Manager. Zero fields of cfg take their defaults.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	if cfg.TickInterval < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTickInterval, cfg.TickInterval)
	}

	def := DefaultConfig()
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.EventLog == nil {
		cfg.EventLog = log.NoopLogger{}
	}

	return &Manager{
		store:    cfg.Store,
		clock:    cfg.Clock,
		interval: cfg.TickInterval,
		logger:   cfg.Logger,
		events:   cfg.EventLog,
		registry: NewRegistry(),
	}, nil
}

// Registry returns the registry of running controllers.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// GetByKey returns the running controller for key or, if none is running,
// a new idle controller. Persisted state is not read until Continue.
func (m *Manager) GetByKey(key string) *Controller {
	if c := m.registry.Get(key); c != nil {
		return c
	}
	return newController(m, key)
}

// HasSave reports whether a persisted record exists for key.
func (m *Manager) HasSave(key string) (bool, error) {
	ok, err := m.store.Exists(key)
	if err != nil {
		return false, fmt.Errorf("%w: exists %q: %w", ErrStorage, key, err)
	}
	return ok, nil
}

// DeleteSave removes the persisted record for key and reports whether one
// existed. A running controller is not affected and saves again when stopped.
func (m *Manager) DeleteSave(key string) (bool, error) {
	found, err := m.store.Delete(key)
	m.trace(log.Event{
		Key:      key,
		Category: log.CategoryPersist,
		Persist:  &log.PersistEvent{Op: log.PersistDelete, Found: found},
	})
	if err != nil {
		return false, fmt.Errorf("%w: delete %q: %w", ErrStorage, key, err)
	}
	return found, nil
}

// Saves returns the persisted records, sorted by key. Corrupt records are
// logged and skipped.
func (m *Manager) Saves() ([]*persistence.Record, error) {
	keys, err := m.store.Keys()
	if err != nil {
		return nil, fmt.Errorf("%w: keys: %w", ErrStorage, err)
	}

	records := make([]*persistence.Record, 0, len(keys))
	for _, k := range keys {
		rec, err := m.store.Load(k)
		if errors.Is(err, persistence.ErrCorruptRecord) {
			m.logger.Warn("skipping corrupt timer record", "key", k, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: load %q: %w", ErrStorage, k, err)
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Start is GetByKey(key).Start(ctx, d).
func (m *Manager) Start(ctx context.Context, key string, d time.Duration) (bool, error) {
	return m.GetByKey(key).Start(ctx, d)
}

// Restart is GetByKey(key).Restart(ctx, end).
func (m *Manager) Restart(ctx context.Context, key string, end time.Time) (bool, error) {
	return m.GetByKey(key).Restart(ctx, end)
}

// Now returns the manager clock's current time.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

func (m *Manager) trace(e log.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = m.clock.Now()
	}
	m.events.Log(e)
}
