package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"

	"github.com/tickdown/tickdown-go/pkg/duration"
	"github.com/tickdown/tickdown-go/pkg/log"
	"github.com/tickdown/tickdown-go/pkg/persistence"
)

// Controller is a single resumable countdown identified by a key.
type Controller struct {
	key string
	mgr *Manager

	mu        sync.Mutex
	lifecycle *stateless.StateMachine
	remaining duration.Duration
	cancel    context.CancelFunc
	done      chan struct{}
	runID     string
	reason    string

	// Callbacks
	onChange []func(duration.Duration)
	onFinish []func()
}

func newController(m *Manager, key string) *Controller {
	c := &Controller{
		key:  key,
		mgr:  m,
		done: make(chan struct{}),
	}
	close(c.done)
	c.lifecycle = newLifecycle(c.transitioned)
	return c
}

// Key returns the timer key.
func (c *Controller) Key() string {
	return c.key
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Controller) state() State {
	return c.lifecycle.MustState().(State)
}

// Remaining returns the normalized remaining duration.
func (c *Controller) Remaining() duration.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining.Normalize()
}

// Format returns the remaining time as HH:MM:SS.
func (c *Controller) Format() string {
	return c.Remaining().Format()
}

// Value returns the remaining time expressed in unit.
func (c *Controller) Value(unit duration.Unit) float64 {
	return c.Remaining().ToSeconds(unit)
}

// RunID returns the identifier of the current or last loop invocation.
func (c *Controller) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// Done returns a channel closed when the current loop exits. For a
// controller that is not running the channel is already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// OnValueChanged registers fn to be called after every tick with the new
// remaining duration. Callbacks run on the loop goroutine.
func (c *Controller) OnValueChanged(fn func(duration.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// OnFinished registers fn to be called once when the countdown reaches zero.
func (c *Controller) OnFinished(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinish = append(c.onFinish, fn)
}

// Run counts down until end and blocks until the countdown finishes (true)
// or is stopped (false). The remaining time is persisted before the first
// tick. An end in the past finishes at once without change notifications.
func (c *Controller) Run(ctx context.Context, end time.Time) (bool, error) {
	if err := persistence.ValidateKey(c.key); err != nil {
		return false, err
	}

	now := c.mgr.clock.Now()
	remaining := duration.FromTimeDuration(end.Sub(now))
	if remaining.IsZero() {
		c.mgr.logger.Debug("timer end already passed", "key", c.key, "end", end)
	}
	return c.start(ctx, remaining, now, "run", true)
}

// Continue resumes the countdown from the persisted record, subtracting the
// time elapsed since it was saved. Without a usable record the countdown
// starts from duration.Empty.
func (c *Controller) Continue(ctx context.Context) (bool, error) {
	if err := persistence.ValidateKey(c.key); err != nil {
		return false, err
	}

	now := c.mgr.clock.Now()
	rec, err := c.mgr.store.Load(c.key)
	switch {
	case errors.Is(err, persistence.ErrCorruptRecord):
		c.mgr.logger.Warn("ignoring corrupt timer record", "key", c.key, "error", err)
		c.traceError("", "load", err)
		rec = nil
	case err != nil:
		c.traceError("", "load", err)
		return false, fmt.Errorf("%w: load %q: %w", ErrStorage, c.key, err)
	}

	remaining := duration.Empty
	if rec != nil {
		remaining = rec.RemainingAt(now)
	}
	c.mgr.trace(log.Event{
		Key:      c.key,
		Category: log.CategoryPersist,
		Persist:  &log.PersistEvent{Op: log.PersistLoad, Remaining: remaining, Found: rec != nil},
	})

	return c.start(ctx, remaining, now, "continue", false)
}

// Start resumes the countdown if a save exists, otherwise runs it for d.
// It blocks like Run.
func (c *Controller) Start(ctx context.Context, d time.Duration) (bool, error) {
	saved, err := c.mgr.HasSave(c.key)
	if err != nil {
		return false, err
	}
	if saved {
		return c.Continue(ctx)
	}
	return c.Run(ctx, c.mgr.clock.Now().Add(d))
}

// Restart stops the loop if it is running, deletes the save and runs the
// countdown again until end. It blocks like Run. If another controller is
// running under the same key, Restart returns ErrKeyInUse and the save is
// left untouched.
func (c *Controller) Restart(ctx context.Context, end time.Time) (bool, error) {
	if err := persistence.ValidateKey(c.key); err != nil {
		return false, err
	}
	if other := c.mgr.registry.Get(c.key); other != nil && other != c {
		return false, fmt.Errorf("%w: %q", ErrKeyInUse, c.key)
	}

	if c.State() == StateRunning {
		c.Stop()
		select {
		case <-c.Done():
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	if _, err := c.mgr.DeleteSave(c.key); err != nil {
		return false, err
	}
	return c.Run(ctx, end)
}

// Stop asks the running loop to exit. It does not wait; use Done for that.
// The loop persists the remaining time and its Run or Continue returns false.
// Stop on a controller that is not running does nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// start claims the key, optionally persists remaining and runs the loop.
func (c *Controller) start(ctx context.Context, remaining duration.Duration, now time.Time, reason string, persist bool) (bool, error) {
	c.mu.Lock()

	if c.state() == StateRunning {
		c.mu.Unlock()
		return false, ErrAlreadyRunning
	}
	if err := c.mgr.registry.add(c); err != nil {
		c.mu.Unlock()
		return false, err
	}
	c.runID = uuid.NewString()
	runID := c.runID
	if persist {
		if err := c.save(remaining, now); err != nil {
			c.mgr.registry.remove(c)
			c.mu.Unlock()
			return false, err
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	c.cancel = cancel
	c.done = done
	c.remaining = remaining
	c.fire(triggerStart, reason)
	c.mu.Unlock()

	c.mgr.logger.Info("timer started", "key", c.key, "remaining", remaining, "run_id", runID, "reason", reason)

	return c.loop(ctx, loopCtx)
}

// fire drives the lifecycle. Must hold c.mu.
func (c *Controller) fire(t trigger, reason string) {
	c.reason = reason
	if err := c.lifecycle.Fire(t); err != nil {
		// Triggers are only fired from states that permit them.
		panic(fmt.Sprintf("timer %q: %v", c.key, err))
	}
}

// transitioned records a lifecycle change. Called from Fire with c.mu held.
func (c *Controller) transitioned(from, to State, t trigger) {
	c.mgr.logger.Debug("timer state changed", "key", c.key, "from", from, "to", to, "trigger", t)
	c.mgr.trace(log.Event{
		RunID:    c.runID,
		Key:      c.key,
		Category: log.CategoryLifecycle,
		Lifecycle: &log.LifecycleEvent{
			OldState:  from.String(),
			NewState:  to.String(),
			Reason:    c.reason,
			Remaining: c.remaining.Normalize(),
		},
	})
}

// save persists remaining. Must hold c.mu.
func (c *Controller) save(remaining duration.Duration, now time.Time) error {
	remaining = remaining.Normalize()
	if err := c.mgr.store.Save(c.key, remaining, now); err != nil {
		c.traceError(c.runID, "save", err)
		return fmt.Errorf("%w: save %q: %w", ErrStorage, c.key, err)
	}
	c.mgr.trace(log.Event{
		RunID:    c.runID,
		Key:      c.key,
		Category: log.CategoryPersist,
		Persist:  &log.PersistEvent{Op: log.PersistSave, Remaining: remaining},
	})
	return nil
}

func (c *Controller) traceError(runID, op string, err error) {
	c.mgr.trace(log.Event{
		RunID:    runID,
		Key:      c.key,
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Op: op, Message: err.Error()},
	})
}
