package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset KEY...",
	Short: "Delete saved timers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  resetTimers,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func resetTimers(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	for _, key := range args {
		found, err := s.mgr.DeleteSave(key)
		if err != nil {
			return err
		}
		if found {
			fmt.Fprintf(out, "Deleted save for %s\n", key)
		} else {
			fmt.Fprintf(out, "No save for %s\n", key)
		}
	}
	return nil
}
