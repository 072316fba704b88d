// Package commands implements the tickdown events subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tickdown/tickdown-go/pkg/log"
)

// ViewOptions selects and formats the events printed by RunView.
type ViewOptions struct {
	Filter log.Filter

	// JSON writes one JSON object per line instead of text.
	JSON bool
}

// RunView prints the events of the log file at path.
func RunView(path string, opts ViewOptions, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if opts.JSON {
			if err := enc.Encode(toJSON(event)); err != nil {
				return err
			}
			continue
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [run:id] key CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [run:%s] %s %s\n", ts, shortenRunID(event.RunID), event.Key, event.Category)

	switch {
	case event.Lifecycle != nil:
		lc := event.Lifecycle
		fmt.Fprintf(w, "  %s -> %s\n", lc.OldState, lc.NewState)
		if lc.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", lc.Reason)
		}
		fmt.Fprintf(w, "  Remaining: %s\n", lc.Remaining)
	case event.Tick != nil:
		fmt.Fprintf(w, "  #%d Remaining: %s\n", event.Tick.Sequence, event.Tick.Remaining)
	case event.Persist != nil:
		p := event.Persist
		switch p.Op {
		case log.PersistSave:
			fmt.Fprintf(w, "  SAVE %s\n", p.Remaining)
		case log.PersistLoad:
			if p.Found {
				fmt.Fprintf(w, "  LOAD %s\n", p.Remaining)
			} else {
				fmt.Fprintf(w, "  LOAD (none, using %s)\n", p.Remaining)
			}
		default:
			fmt.Fprintf(w, "  %s found=%t\n", p.Op, p.Found)
		}
	case event.Error != nil:
		fmt.Fprintf(w, "  Op: %s\n", event.Error.Op)
		fmt.Fprintf(w, "  Error: %s\n", event.Error.Message)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// jsonEvent is the JSONL export shape of an event.
type jsonEvent struct {
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
	Key       string `json:"key"`
	Category  string `json:"category"`
	OldState  string `json:"old_state,omitempty"`
	NewState  string `json:"new_state,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Sequence  uint32 `json:"seq,omitempty"`
	Op        string `json:"op,omitempty"`
	Found     *bool  `json:"found,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Error     string `json:"error,omitempty"`
}

func toJSON(e log.Event) jsonEvent {
	out := jsonEvent{
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		RunID:     e.RunID,
		Key:       e.Key,
		Category:  e.Category.String(),
	}
	switch {
	case e.Lifecycle != nil:
		out.OldState = e.Lifecycle.OldState
		out.NewState = e.Lifecycle.NewState
		out.Reason = e.Lifecycle.Reason
		out.Remaining = e.Lifecycle.Remaining.String()
	case e.Tick != nil:
		out.Sequence = e.Tick.Sequence
		out.Remaining = e.Tick.Remaining.String()
	case e.Persist != nil:
		found := e.Persist.Found
		out.Op = e.Persist.Op.String()
		out.Found = &found
		out.Remaining = e.Persist.Remaining.String()
	case e.Error != nil:
		out.Op = e.Error.Op
		out.Error = e.Error.Message
	}
	return out
}
