package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tickdown/tickdown-go/pkg/log"
	"github.com/tickdown/tickdown-go/pkg/persistence"
	"github.com/tickdown/tickdown-go/pkg/timer"
)

// session bundles the manager with the resources it holds open.
type session struct {
	mgr    *timer.Manager
	store  persistence.Store
	events *log.FileLogger
}

// openSession opens the configured store and event log and builds a manager.
func openSession() (*session, error) {
	store, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &session{store: store}

	var eventLog log.Logger
	if cfg.EventLog != "" {
		s.events, err = log.NewFileLogger(cfg.EventLog)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		eventLog = s.events
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		eventLog = log.NewMultiLogger(eventLog, log.NewSlogAdapter(logger))
	}

	s.mgr, err = timer.NewManager(timer.Config{
		Store:        store,
		TickInterval: cfg.TickInterval,
		Logger:       logger,
		EventLog:     eventLog,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the store and event log.
func (s *session) Close() error {
	var errs []error
	if s.events != nil {
		errs = append(errs, s.events.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

// printer serializes writes from concurrently running timers.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}
