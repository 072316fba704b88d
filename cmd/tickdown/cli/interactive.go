package cli

import (
	"github.com/spf13/cobra"

	"github.com/tickdown/tickdown-go/cmd/tickdown/interactive"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"shell"},
	Short:   "Start an interactive shell",
	Long: `Start a shell for running several timers at once.

Timers still running when the shell exits are stopped and saved.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	sh, err := interactive.New(s.mgr, logger)
	if err != nil {
		return err
	}

	sh.Run(cmd.Context())
	return nil
}
