package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/tickdown/tickdown-go/pkg/duration"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func TestReaderIteratesEvents(t *testing.T) {
	now := time.Now()
	events := []Event{
		{Timestamp: now, Key: "alpha", Category: CategoryLifecycle, Lifecycle: &LifecycleEvent{OldState: "IDLE", NewState: "RUNNING"}},
		{Timestamp: now, Key: "beta", Category: CategoryTick, Tick: &TickEvent{Sequence: 1}},
		{Timestamp: now, Key: "gamma", Category: CategoryPersist, Persist: &PersistEvent{Op: PersistSave}},
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if read[i].Key != want {
			t.Errorf("event %d: key = %q, want %q", i, read[i].Key, want)
		}
	}
	if read[1].Tick == nil || read[1].Tick.Sequence != 1 {
		t.Errorf("tick payload not preserved: %+v", read[1].Tick)
	}
}

func TestReaderEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.tlog")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, RunID: "run-1", Key: "alpha", Category: CategoryLifecycle},
		{Timestamp: base.Add(time.Second), RunID: "run-1", Key: "alpha", Category: CategoryTick},
		{Timestamp: base.Add(2 * time.Second), RunID: "run-2", Key: "beta", Category: CategoryTick},
		{Timestamp: base.Add(3 * time.Second), RunID: "run-2", Key: "beta", Category: CategoryError},
	}
	path := createTestLogFile(t, events)

	tick := CategoryTick
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 4},
		{"by key", Filter{Key: "alpha"}, 2},
		{"by run", Filter{RunID: "run-2"}, 2},
		{"by category", Filter{Category: &tick}, 2},
		{"key and category", Filter{Key: "beta", Category: &tick}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"no match", Filter{Key: "gamma"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			got, err := reader.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events"+FileExtension)
	rem := duration.New(0, 0, 1, 30)

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), Key: "k", Category: CategoryPersist, Persist: &PersistEvent{Op: PersistSave, Remaining: rem}})
		logger.Close()
		// Second close is a no-op.
		if err := logger.Close(); err != nil {
			t.Errorf("second Close returned %v", err)
		}
		// Logging after close is ignored.
		logger.Log(Event{Key: "ignored"})
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[1].Persist == nil || got[1].Persist.Remaining != rem {
		t.Errorf("persist payload = %+v, want remaining %v", got[1].Persist, rem)
	}
}
