// Command tickdown runs resumable countdown timers from the terminal.
//
// Usage:
//
//	tickdown <command> [flags]
//
// Commands:
//
//	run          Run or resume a timer until it finishes or is interrupted
//	status       Show saved timers and their projected remaining time
//	reset        Delete saved timers
//	events       View a timer event log
//	interactive  Start an interactive shell
//	version      Print the version
//
// Examples:
//
//	# Run a 90 second timer; Ctrl-C saves it
//	tickdown run daily-bonus 90s
//
//	# Resume it later, subtracting the time spent away
//	tickdown run daily-bonus
//
//	# Run every timer declared in tickdown.yaml
//	tickdown run --all
package main

import (
	"os"

	"github.com/tickdown/tickdown-go/cmd/tickdown/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
