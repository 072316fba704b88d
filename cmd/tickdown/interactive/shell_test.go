package interactive

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdown/tickdown-go/internal/applog"
	"github.com/tickdown/tickdown-go/pkg/clock"
	"github.com/tickdown/tickdown-go/pkg/duration"
	"github.com/tickdown/tickdown-go/pkg/persistence"
	"github.com/tickdown/tickdown-go/pkg/timer"
)

// syncBuffer is a bytes.Buffer safe for the shell's goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	shell *Shell
	out   *syncBuffer
	clk   *clock.Fake
	store *persistence.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC))
	store := persistence.NewMemoryStore()
	mgr, err := timer.NewManager(timer.Config{Store: store, Clock: clk})
	require.NoError(t, err)

	out := &syncBuffer{}
	s := newShell(mgr, applog.Noop, out)
	t.Cleanup(s.shutdown)
	return &fixture{shell: s, out: out, clk: clk, store: store}
}

func (f *fixture) tick(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.clk.BlockUntil(ctx, 1))
	f.clk.Advance(time.Second)
}

func (f *fixture) waitFor(t *testing.T, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), text)
	}, 5*time.Second, time.Millisecond, "output never contained %q: %s", text, f.out.String())
}

func TestShellStartRunsToCompletion(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.shell.exec("echo on"))
	assert.True(t, f.shell.exec("start bonus 2s"))
	f.tick(t)
	f.tick(t)

	f.waitFor(t, "bonus finished")
	assert.Contains(t, f.out.String(), "bonus 00:00:01")
	assert.Contains(t, f.out.String(), "bonus 00:00:00")

	ok, err := f.store.Exists("bonus")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShellStopSavesAndStatusShowsIt(t *testing.T) {
	f := newFixture(t)

	f.shell.exec("start chest 10s")
	f.tick(t)
	f.tick(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.clk.BlockUntil(ctx, 1))

	f.shell.exec("stop chest")
	assert.Contains(t, f.out.String(), "chest stopped at 00:00:08")

	rec, err := f.store.Load("chest")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, duration.FromSpan(8), rec.Remaining)

	f.shell.exec("status")
	assert.Regexp(t, `chest\s+SAVED\s+00:00:08`, f.out.String())

	f.shell.exec("reset chest")
	assert.Contains(t, f.out.String(), "Deleted save for chest")
	f.shell.exec("reset chest")
	assert.Contains(t, f.out.String(), "No save for chest")
}

func TestShellStopBeforeLoopStarts(t *testing.T) {
	f := newFixture(t)

	f.shell.exec("start quick 5s")
	f.shell.exec("stop quick")

	assert.Contains(t, f.out.String(), "quick stopped at 00:00:05")
	assert.Nil(t, f.shell.job("quick"))
}

func TestShellResumeAndDuplicates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save("gift", duration.FromSpan(1), f.clk.Now()))

	f.shell.exec("resume gift")
	f.shell.exec("resume gift")
	f.tick(t)

	f.waitFor(t, "gift finished")
	assert.Contains(t, f.out.String(), "gift is already running")
}

func TestShellRestart(t *testing.T) {
	f := newFixture(t)

	f.shell.exec("start daily 1m")
	f.tick(t)
	f.shell.exec("restart daily 1s")
	f.tick(t)

	f.waitFor(t, "daily finished")
	assert.Contains(t, f.out.String(), "daily stopped at")
}

func TestShellUsageAndUnknown(t *testing.T) {
	f := newFixture(t)

	for _, line := range []string{"start", "start k nope", "resume", "stop", "restart k", "reset", "echo maybe", "stop ghost", "frobnicate", ""} {
		assert.True(t, f.shell.exec(line), line)
	}

	out := f.out.String()
	assert.Contains(t, out, "Usage: start KEY DURATION")
	assert.Contains(t, out, "Invalid duration: nope")
	assert.Contains(t, out, "ghost is not running")
	assert.Contains(t, out, "Unknown command: frobnicate")

	assert.False(t, f.shell.exec("quit"))
}
