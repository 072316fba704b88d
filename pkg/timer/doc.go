// Package timer implements resumable countdown timers.
//
// A Controller counts a Duration down once per tick, notifies observers of
// every change and of completion, and survives process restarts by
// persisting its remaining time through a persistence.Store. Controllers are
// obtained from a Manager, which owns the Registry of running timers:
//
//	mgr, err := timer.NewManager(timer.Config{Store: store})
//	c := mgr.GetByKey("daily-bonus")
//	c.OnValueChanged(func(d duration.Duration) { fmt.Println(d.Format()) })
//	finished, err := c.Run(ctx, time.Now().Add(90*time.Second))
//
// Run and Continue block until the countdown finishes (true) or is stopped
// (false). Stop, or cancelling ctx, persists the remaining time; Continue
// picks it up again and subtracts the time spent away.
//
// # Lifecycle
//
//	IDLE ──start──► RUNNING ──finish──► FINISHED
//	                  │  ▲                 │
//	                stop │                 │
//	                  ▼  └─────start───────┘
//	                STOPPED ───start──► RUNNING
//
// At most one controller per key is registered as running at any time.
package timer
