package timer

import (
	"context"
	"fmt"
	"slices"

	"github.com/tickdown/tickdown-go/pkg/log"
)

// loop ticks the countdown down until it finishes or loopCtx is done.
// parent is the caller's context, used to tell Stop from host shutdown.
func (c *Controller) loop(parent, loopCtx context.Context) (bool, error) {
	var seq uint32
	for {
		c.mu.Lock()
		more := c.remaining.Borrow()
		c.mu.Unlock()
		if !more {
			break
		}

		if !c.wait(loopCtx) {
			reason := "stop"
			if parent.Err() != nil {
				reason = "context done"
			}
			return false, c.halt(reason)
		}

		c.mu.Lock()
		c.remaining.Seconds--
		value := c.remaining
		observers := slices.Clone(c.onChange)
		runID := c.runID
		c.mu.Unlock()

		seq++
		c.mgr.trace(log.Event{
			RunID:    runID,
			Key:      c.key,
			Category: log.CategoryTick,
			Tick:     &log.TickEvent{Sequence: seq, Remaining: value},
		})
		for _, fn := range observers {
			fn(value)
		}
	}

	return true, c.finish()
}

// wait suspends for one tick. It returns false if ctx is done before or as
// the tick arrives.
func (c *Controller) wait(ctx context.Context) bool {
	t := c.mgr.clock.NewTimer(c.mgr.interval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C():
		return ctx.Err() == nil
	}
}

// halt persists the remaining time and deregisters the controller.
func (c *Controller) halt(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remaining = c.remaining.Normalize()
	err := c.save(c.remaining, c.mgr.clock.Now())
	c.cancel = nil
	c.fire(triggerStop, reason)
	c.mgr.registry.remove(c)

	c.mgr.logger.Info("timer stopped", "key", c.key, "remaining", c.remaining, "reason", reason)
	return err
}

// finish deletes the record and deregisters the controller while it still
// reads as running, then marks it finished and notifies observers. An
// observer may therefore start the controller again.
func (c *Controller) finish() error {
	c.mu.Lock()
	runID := c.runID
	found, err := c.mgr.store.Delete(c.key)
	c.mgr.registry.remove(c)
	c.cancel = nil
	c.fire(triggerFinish, "expired")
	observers := slices.Clone(c.onFinish)
	c.mu.Unlock()

	c.mgr.trace(log.Event{
		RunID:    runID,
		Key:      c.key,
		Category: log.CategoryPersist,
		Persist:  &log.PersistEvent{Op: log.PersistDelete, Found: found},
	})
	if err != nil {
		c.traceError(runID, "delete", err)
		err = fmt.Errorf("%w: delete %q: %w", ErrStorage, c.key, err)
	} else {
		c.mgr.logger.Info("timer finished", "key", c.key, "run_id", runID)
	}

	for _, fn := range observers {
		fn()
	}
	return err
}
