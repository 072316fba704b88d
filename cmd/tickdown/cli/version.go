package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tickdown/tickdown-go/pkg/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of tickdown",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.Get().Long())
	},
}
