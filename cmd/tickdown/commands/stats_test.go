package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tickdown/tickdown-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	path := writeLog(t, sampleEvents())

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats: %v", err)
	}

	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", stats.TotalEvents)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.EventsByCategory[log.CategoryLifecycle] != 2 {
		t.Errorf("lifecycle events = %d, want 2", stats.EventsByCategory[log.CategoryLifecycle])
	}
	if got := stats.TimeRange.End.Sub(stats.TimeRange.Start); got != 2*time.Second {
		t.Errorf("time range = %v, want 2s", got)
	}

	bonus := stats.Timers["bonus"]
	if bonus == nil {
		t.Fatal("missing stats for bonus")
	}
	if bonus.Runs != 1 || bonus.Ticks != 1 || bonus.Stops != 1 || bonus.Finishes != 0 {
		t.Errorf("bonus stats = %+v", bonus)
	}
	if bonus.LastState != "STOPPED" {
		t.Errorf("LastState = %q, want STOPPED", bonus.LastState)
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	output := buf.String()

	for _, want := range []string{"Total events: 5", "Timers (2):", "bonus: runs=1 ticks=1 stops=1", "chest:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := writeLog(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "Total events: 0" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
