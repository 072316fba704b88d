package timer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdown/tickdown-go/pkg/persistence"
	"github.com/tickdown/tickdown-go/pkg/persistence/mocks"
)

func TestNewManagerValidation(t *testing.T) {
	t.Run("requires store", func(t *testing.T) {
		_, err := NewManager(Config{})
		assert.ErrorIs(t, err, ErrNoStore)
	})

	t.Run("rejects negative interval", func(t *testing.T) {
		_, err := NewManager(Config{Store: persistence.NewMemoryStore(), TickInterval: -time.Second})
		assert.ErrorIs(t, err, ErrInvalidTickInterval)
	})

	t.Run("applies defaults", func(t *testing.T) {
		m, err := NewManager(Config{Store: persistence.NewMemoryStore()})
		require.NoError(t, err)
		assert.Equal(t, DefaultTickInterval, m.interval)
		assert.NotNil(t, m.clock)
		assert.NotNil(t, m.logger)
		assert.NotNil(t, m.events)
	})
}

func TestManagerSaves(t *testing.T) {
	store := persistence.NewMemoryStore()
	m, clk := newTestManager(t, store)

	found, err := m.HasSave("gift")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save("gift", seconds(90), clk.Now()))
	require.NoError(t, store.Save("chest", seconds(30), clk.Now()))

	found, err = m.HasSave("gift")
	require.NoError(t, err)
	assert.True(t, found)

	records, err := m.Saves()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "chest", records[0].Key)
	assert.Equal(t, "gift", records[1].Key)

	deleted, err := m.DeleteSave("gift")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = m.DeleteSave("gift")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestManagerStorageErrors(t *testing.T) {
	store := mocks.NewMockStore(t)
	store.EXPECT().Exists("k").Return(false, errors.New("io"))
	store.EXPECT().Delete("k").Return(false, errors.New("io"))
	store.EXPECT().Keys().Return(nil, errors.New("io"))

	m, _ := newTestManager(t, store)

	_, err := m.HasSave("k")
	assert.ErrorIs(t, err, ErrStorage)
	_, err = m.DeleteSave("k")
	assert.ErrorIs(t, err, ErrStorage)
	_, err = m.Saves()
	assert.ErrorIs(t, err, ErrStorage)
}

func TestManagerStartRunsWithoutSave(t *testing.T) {
	m, clk := newTestManager(t, persistence.NewMemoryStore())

	done := runAsync(func() (bool, error) {
		return m.Start(context.Background(), "new", 3*time.Second)
	})
	awaitSuspended(t, clk, 1)
	assert.Equal(t, seconds(3), m.Registry().Get("new").Remaining())

	for range 3 {
		tick(t, clk, 1)
	}
	r := await(t, done)
	require.NoError(t, r.err)
	assert.True(t, r.finished)
}

func TestManagerStartContinuesSave(t *testing.T) {
	store := persistence.NewMemoryStore()
	m, clk := newTestManager(t, store)
	require.NoError(t, store.Save("old", seconds(2), clk.Now()))

	done := runAsync(func() (bool, error) {
		return m.Start(context.Background(), "old", time.Hour)
	})
	awaitSuspended(t, clk, 1)
	assert.Equal(t, seconds(2), m.Registry().Get("old").Remaining(), "saved duration wins over the default")

	tick(t, clk, 1)
	tick(t, clk, 1)
	r := await(t, done)
	require.NoError(t, r.err)
	assert.True(t, r.finished)
}

func TestManagerRestart(t *testing.T) {
	store := persistence.NewMemoryStore()
	m, clk := newTestManager(t, store)

	c := m.GetByKey("daily")
	rec := &recorder{}
	rec.attach(c)

	first := runAsync(func() (bool, error) {
		return c.Run(context.Background(), clk.Now().Add(time.Minute))
	})
	tick(t, clk, 1)
	awaitSuspended(t, clk, 1)

	second := runAsync(func() (bool, error) {
		return m.Restart(context.Background(), "daily", clk.Now().Add(2*time.Second))
	})

	r := await(t, first)
	require.NoError(t, r.err)
	assert.False(t, r.finished, "the interrupted run reports a stop")

	awaitSuspended(t, clk, 1)
	assert.Equal(t, seconds(2), c.Remaining())

	tick(t, clk, 1)
	tick(t, clk, 1)
	r = await(t, second)
	require.NoError(t, r.err)
	assert.True(t, r.finished)

	_, finishes := rec.snapshot()
	assert.Equal(t, 1, finishes)
	exists, err := store.Exists("daily")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestManagerRestartIdle(t *testing.T) {
	store := persistence.NewMemoryStore()
	m, clk := newTestManager(t, store)
	require.NoError(t, store.Save("idle", seconds(500), clk.Now()))

	done := runAsync(func() (bool, error) {
		return m.Restart(context.Background(), "idle", clk.Now().Add(time.Second))
	})
	awaitSuspended(t, clk, 1)
	assert.Equal(t, seconds(1), m.Registry().Get("idle").Remaining())

	tick(t, clk, 1)
	r := await(t, done)
	require.NoError(t, r.err)
	assert.True(t, r.finished)
}

func TestManagerSavesSkipsCorruptRecords(t *testing.T) {
	store := mocks.NewMockStore(t)
	good := persistence.NewRecord("good", seconds(30), testStart)
	store.EXPECT().Keys().Return([]string{"bad", "good"}, nil)
	store.EXPECT().Load("bad").Return(nil, fmt.Errorf("%w: truncated", persistence.ErrCorruptRecord))
	store.EXPECT().Load("good").Return(good, nil)

	m, _ := newTestManager(t, store)

	records, err := m.Saves()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Key)
}

func TestManagerSavesLoadFailure(t *testing.T) {
	store := mocks.NewMockStore(t)
	store.EXPECT().Keys().Return([]string{"a", "b"}, nil)
	store.EXPECT().Load("a").Return(nil, errors.New("input/output error"))

	m, _ := newTestManager(t, store)

	records, err := m.Saves()
	assert.Nil(t, records)
	require.ErrorIs(t, err, ErrStorage)
}
