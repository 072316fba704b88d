// Package cli implements the tickdown command-line interface using Cobra.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tickdown/tickdown-go/internal/applog"
	"github.com/tickdown/tickdown-go/internal/config"
)

var (
	cfgPath   string
	dataDir   string
	backend   string
	logLevel  string
	logFormat string
	jsonOut   bool

	// Set by PersistentPreRunE.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tickdown",
	Short: "Resumable countdown timers",
	Long: `tickdown runs countdown timers that survive restarts.

Stopping a timer saves its remaining time. Resuming it later subtracts the
time that passed in between, so a timer keeps "running" while tickdown is not.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		// Flags win over the file.
		if dataDir != "" {
			loaded.DataDir = dataDir
		}
		if backend != "" {
			loaded.Backend = backend
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		if logFormat != "" {
			loaded.Log.Format = logFormat
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		l, err := applog.New(os.Stderr, applog.Options{
			Level:  loaded.Log.Level,
			Format: loaded.Log.Format,
		})
		if err != nil {
			return err
		}

		cfg = loaded
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultFileName, "config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding saved timers (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: file, sqlite or memory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: auto, console, dev or json")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON where supported")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
