package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [KEY...]",
	Short: "Show saved timers",
	Long:  `Show saved timers with the remaining time they would have now.`,
	RunE:  showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusEntry struct {
	Key       string    `json:"key"`
	SavedAt   time.Time `json:"saved_at"`
	Saved     string    `json:"saved_remaining"`
	Remaining string    `json:"remaining"`
	Seconds   int64     `json:"remaining_seconds"`
	Expired   bool      `json:"expired"`
}

func showStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.mgr.Saves()
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(args))
	for _, k := range args {
		want[k] = true
	}

	now := s.mgr.Now()
	entries := make([]statusEntry, 0, len(records))
	for _, rec := range records {
		if len(want) > 0 && !want[rec.Key] {
			continue
		}
		rem := rec.RemainingAt(now)
		entries = append(entries, statusEntry{
			Key:       rec.Key,
			SavedAt:   rec.SavedAt,
			Saved:     rec.Remaining.String(),
			Remaining: rem.String(),
			Seconds:   rem.TotalSeconds(),
			Expired:   rem.IsZero(),
		})
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved timers")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSAVED AT\tSAVED\tREMAINING")
	for _, e := range entries {
		remaining := e.Remaining
		if e.Expired {
			remaining = "expired"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, e.SavedAt.Local().Format(time.DateTime), e.Saved, remaining)
	}
	return w.Flush()
}
