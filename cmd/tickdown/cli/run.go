package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tickdown/tickdown-go/pkg/duration"
	"github.com/tickdown/tickdown-go/pkg/timer"
)

var (
	runAll   bool
	runQuiet bool
)

var runCmd = &cobra.Command{
	Use:   "run [KEY] [DURATION]",
	Short: "Run or resume a timer",
	Long: `Run a countdown timer until it finishes.

If KEY has a save, the timer resumes from it and DURATION is ignored.
Otherwise it runs for DURATION, or for the duration declared for KEY in the
config file. Interrupting tickdown (Ctrl-C) saves the remaining time.`,
	Example: `  tickdown run daily-bonus 1m50s
  tickdown run daily-bonus
  tickdown run --all`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runTimers,
}

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "run every timer declared in the config file")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "only print when a timer stops or finishes")
	rootCmd.AddCommand(runCmd)
}

// target is one timer to run.
type target struct {
	key      string
	duration time.Duration
}

func runTimers(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	out := &printer{w: cmd.OutOrStdout()}

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			return runOne(ctx, s.mgr, t, out, !runQuiet)
		})
	}
	return g.Wait()
}

func resolveTargets(args []string) ([]target, error) {
	if runAll {
		if len(args) > 0 {
			return nil, errors.New("--all takes no arguments")
		}
		if len(cfg.Timers) == 0 {
			return nil, errors.New("no timers declared in config")
		}
		targets := make([]target, 0, len(cfg.Timers))
		for _, t := range cfg.Timers {
			targets = append(targets, target{key: t.Key, duration: t.Duration})
		}
		return targets, nil
	}

	if len(args) == 0 {
		return nil, errors.New("KEY required (or use --all)")
	}
	t := target{key: args[0]}
	if len(args) == 2 {
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", args[1], err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("duration must be positive, got %v", d)
		}
		t.duration = d
	} else if declared, ok := cfg.Timer(t.key); ok {
		t.duration = declared.Duration
	}
	return []target{t}, nil
}

// runOne runs a single timer to completion or until ctx is done.
func runOne(ctx context.Context, mgr *timer.Manager, t target, out *printer, verbose bool) error {
	c := mgr.GetByKey(t.key)

	if t.duration == 0 {
		saved, err := mgr.HasSave(t.key)
		if err != nil {
			return err
		}
		if !saved {
			return fmt.Errorf("%s: no save found, DURATION required", t.key)
		}
	}

	if verbose {
		c.OnValueChanged(func(d duration.Duration) {
			out.Printf("%s %s\n", t.key, d.Format())
		})
	}
	c.OnFinished(func() {
		out.Printf("%s finished\n", t.key)
	})

	finished, err := c.Start(ctx, t.duration)
	if err != nil {
		return fmt.Errorf("%s: %w", t.key, err)
	}
	if !finished {
		out.Printf("%s stopped, %s saved\n", t.key, c.Format())
	}
	return nil
}
