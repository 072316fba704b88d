package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdown/tickdown-go/pkg/persistence"
)

func TestRegistry(t *testing.T) {
	m, _ := newTestManager(t, persistence.NewMemoryStore())
	r := NewRegistry()

	a := newController(m, "a")
	b := newController(m, "b")
	other := newController(m, "a")

	require.NoError(t, r.add(b))
	require.NoError(t, r.add(a))
	require.NoError(t, r.add(a), "re-adding the same instance is allowed")

	assert.ErrorIs(t, r.add(other), ErrKeyInUse)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Same(t, a, r.Get("a"))
	assert.Nil(t, r.Get("missing"))

	r.remove(other)
	assert.Same(t, a, r.Get("a"), "removing a different instance leaves the entry")

	r.remove(a)
	assert.Nil(t, r.Get("a"))
	assert.Equal(t, 1, r.Len())
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "IDLE"},
		{StateRunning, "RUNNING"},
		{StateStopped, "STOPPED"},
		{StateFinished, "FINISHED"},
		{State(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestLifecycleTransitions(t *testing.T) {
	var seen []State
	sm := newLifecycle(func(_, to State, _ trigger) { seen = append(seen, to) })

	require.NoError(t, sm.Fire(triggerStart))
	require.NoError(t, sm.Fire(triggerStop))
	require.NoError(t, sm.Fire(triggerStart))
	require.NoError(t, sm.Fire(triggerFinish))
	require.NoError(t, sm.Fire(triggerStart))

	assert.Equal(t, []State{StateRunning, StateStopped, StateRunning, StateFinished, StateRunning}, seen)
	assert.Error(t, sm.Fire(triggerStart), "start is not permitted while running")
}
