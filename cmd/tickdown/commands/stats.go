package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tickdown/tickdown-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Timers           map[string]*TimerStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// TimerStats holds statistics for a single timer key.
type TimerStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Runs      int
	Ticks     int
	Stops     int
	Finishes  int
	LastState string
}

// CollectStats reads every event of the log file at path.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Timers:           make(map[string]*TimerStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		ts, ok := stats.Timers[event.Key]
		if !ok {
			ts = &TimerStats{FirstSeen: event.Timestamp}
			stats.Timers[event.Key] = ts
		}
		ts.LastSeen = event.Timestamp

		switch {
		case event.Tick != nil:
			ts.Ticks++
		case event.Lifecycle != nil:
			ts.LastState = event.Lifecycle.NewState
			switch event.Lifecycle.NewState {
			case "RUNNING":
				ts.Runs++
			case "STOPPED":
				ts.Stops++
			case "FINISHED":
				ts.Finishes++
			}
		case event.Error != nil:
			stats.Errors++
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return nil
	}
	fmt.Fprintf(w, "Time range:   %s - %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
	fmt.Fprintf(w, "Errors:       %d\n\n", stats.Errors)

	fmt.Fprintln(w, "By category:")
	for _, c := range []log.Category{log.CategoryLifecycle, log.CategoryTick, log.CategoryPersist, log.CategoryError} {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", c, n)
		}
	}

	keys := make([]string, 0, len(stats.Timers))
	for k := range stats.Timers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\nTimers (%d):\n", len(keys))
	for _, k := range keys {
		ts := stats.Timers[k]
		fmt.Fprintf(w, "  %s: runs=%d ticks=%d stops=%d finishes=%d state=%s\n",
			k, ts.Runs, ts.Ticks, ts.Stops, ts.Finishes, ts.LastState)
	}
	return nil
}
