package timer

import (
	"context"

	"github.com/qmuntal/stateless"
)

// State represents the lifecycle state of a controller.
type State uint8

const (
	// StateIdle indicates a controller that was never started.
	StateIdle State = iota

	// StateRunning indicates the tick loop is active.
	StateRunning

	// StateStopped indicates the loop was cancelled and the remaining time saved.
	StateStopped

	// StateFinished indicates the countdown reached zero.
	StateFinished
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// trigger drives the lifecycle state machine.
type trigger uint8

const (
	triggerStart trigger = iota
	triggerStop
	triggerFinish
)

func (t trigger) String() string {
	switch t {
	case triggerStart:
		return "start"
	case triggerStop:
		return "stop"
	case triggerFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// newLifecycle builds the controller state machine. onTransition is called
// synchronously from Fire.
func newLifecycle(onTransition func(from, to State, t trigger)) *stateless.StateMachine {
	sm := stateless.NewStateMachine(StateIdle)

	sm.Configure(StateIdle).
		Permit(triggerStart, StateRunning)

	sm.Configure(StateRunning).
		Permit(triggerStop, StateStopped).
		Permit(triggerFinish, StateFinished)

	sm.Configure(StateStopped).
		Permit(triggerStart, StateRunning)

	sm.Configure(StateFinished).
		Permit(triggerStart, StateRunning)

	sm.OnTransitioned(func(_ context.Context, tr stateless.Transition) {
		onTransition(tr.Source.(State), tr.Destination.(State), tr.Trigger.(trigger))
	})

	return sm
}
