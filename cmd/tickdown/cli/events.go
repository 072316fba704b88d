package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tickdown/tickdown-go/cmd/tickdown/commands"
	"github.com/tickdown/tickdown-go/pkg/log"
)

var (
	eventsKey       string
	eventsRunID     string
	eventsCategory  string
	eventsTimeStart string
	eventsTimeEnd   string
	eventsStats     bool
)

var eventsCmd = &cobra.Command{
	Use:   "events [FILE]",
	Short: "View a timer event log",
	Long: `View a CBOR timer event log written by tickdown when event_log is set.

Without FILE the event_log path from the config file is used.`,
	Example: `  tickdown events --key daily-bonus
  tickdown events --category tick --json events.tlog
  tickdown events --stats events.tlog`,
	Args: cobra.MaximumNArgs(1),
	RunE: viewEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsKey, "key", "", "filter by timer key")
	eventsCmd.Flags().StringVar(&eventsRunID, "run", "", "filter by run ID")
	eventsCmd.Flags().StringVar(&eventsCategory, "category", "", "filter by category (lifecycle, tick, persist, error)")
	eventsCmd.Flags().StringVar(&eventsTimeStart, "since", "", "only events at or after this time (RFC3339)")
	eventsCmd.Flags().StringVar(&eventsTimeEnd, "until", "", "only events before this time (RFC3339)")
	eventsCmd.Flags().BoolVar(&eventsStats, "stats", false, "show statistics instead of events")
	rootCmd.AddCommand(eventsCmd)
}

func viewEvents(cmd *cobra.Command, args []string) error {
	path := cfg.EventLog
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no event log given and event_log is not configured")
	}

	if eventsStats {
		return commands.RunStats(path, cmd.OutOrStdout())
	}

	filter, err := buildFilter()
	if err != nil {
		return err
	}
	return commands.RunView(path, commands.ViewOptions{Filter: filter, JSON: jsonOut}, cmd.OutOrStdout())
}

func buildFilter() (log.Filter, error) {
	filter := log.Filter{Key: eventsKey, RunID: eventsRunID}

	if eventsCategory != "" {
		c, err := log.ParseCategory(eventsCategory)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if eventsTimeStart != "" {
		t, err := time.Parse(time.RFC3339, eventsTimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid --since: %w", err)
		}
		filter.TimeStart = &t
	}
	if eventsTimeEnd != "" {
		t, err := time.Parse(time.RFC3339, eventsTimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid --until: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}
