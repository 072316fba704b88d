// Package interactive provides the interactive command-line interface
// for tickdown.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"

	"github.com/tickdown/tickdown-go/pkg/duration"
	"github.com/tickdown/tickdown-go/pkg/timer"
)

// Shell runs timers from a readline prompt.
type Shell struct {
	mgr    *timer.Manager
	logger *slog.Logger
	rl     *readline.Instance
	out    io.Writer

	// Echo prints every tick. Off by default so the prompt stays usable.
	echo bool

	mu      sync.Mutex
	running map[string]*job
	wg      sync.WaitGroup
}

// job is a timer loop started from the shell.
type job struct {
	c      *timer.Controller
	cancel context.CancelFunc
	exited chan struct{}
}

// stop cancels the loop and waits until it has saved and exited.
func (j *job) stop() {
	j.cancel()
	<-j.exited
}

// New creates a shell reading commands from the terminal.
func New(mgr *timer.Manager, logger *slog.Logger) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tickdown> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(mgr, logger, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(mgr *timer.Manager, logger *slog.Logger, out io.Writer) *Shell {
	return &Shell{
		mgr:     mgr,
		logger:  logger,
		out:     out,
		running: make(map[string]*job),
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("start"),
		readline.PcItem("resume"),
		readline.PcItem("stop"),
		readline.PcItem("restart"),
		readline.PcItem("status"),
		readline.PcItem("reset"),
		readline.PcItem("echo"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop. Running timers are stopped and
// saved when the loop exits.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close()
	defer s.shutdown()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return
		}

		if !s.exec(line) {
			return
		}
	}
}

// exec runs one command line. It returns false when the shell should exit.
func (s *Shell) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "start", "s":
		s.cmdStart(args)
	case "resume", "c":
		s.cmdResume(args)
	case "stop", "x":
		s.cmdStop(args)
	case "restart":
		s.cmdRestart(args)
	case "status", "st":
		s.cmdStatus()
	case "reset":
		s.cmdReset(args)
	case "echo":
		s.cmdEcho(args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `
Commands:
  start KEY DURATION    Run KEY for DURATION (e.g. 1m30s), resuming a save if present
  resume KEY            Continue KEY from its save
  stop KEY              Stop KEY and save the remaining time
  restart KEY DURATION  Discard KEY's save and run it for DURATION
  status                Show running timers and saves
  reset KEY             Delete KEY's save
  echo on|off           Print every tick
  help                  Show this help
  quit                  Stop all timers and exit

`)
}

func (s *Shell) cmdStart(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: start KEY DURATION")
		return
	}
	d, err := time.ParseDuration(args[1])
	if err != nil || d <= 0 {
		fmt.Fprintf(s.out, "Invalid duration: %s\n", args[1])
		return
	}
	s.launch(args[0], func(ctx context.Context, c *timer.Controller) (bool, error) {
		return c.Start(ctx, d)
	})
}

func (s *Shell) cmdResume(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: resume KEY")
		return
	}
	s.launch(args[0], func(ctx context.Context, c *timer.Controller) (bool, error) {
		return c.Continue(ctx)
	})
}

func (s *Shell) cmdRestart(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: restart KEY DURATION")
		return
	}
	d, err := time.ParseDuration(args[1])
	if err != nil || d <= 0 {
		fmt.Fprintf(s.out, "Invalid duration: %s\n", args[1])
		return
	}

	key := args[0]
	if j := s.job(key); j != nil {
		j.stop()
	}
	s.launch(key, func(ctx context.Context, c *timer.Controller) (bool, error) {
		return c.Restart(ctx, s.mgr.Now().Add(d))
	})
}

func (s *Shell) cmdStop(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: stop KEY")
		return
	}
	j := s.job(args[0])
	if j == nil {
		fmt.Fprintf(s.out, "%s is not running\n", args[0])
		return
	}
	j.stop()
}

func (s *Shell) cmdStatus() {
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSTATE\tREMAINING")

	running := s.mgr.Registry().Keys()
	seen := make(map[string]bool, len(running))
	for _, key := range running {
		c := s.mgr.Registry().Get(key)
		if c == nil {
			continue
		}
		seen[key] = true
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, c.State(), c.Remaining())
	}

	records, err := s.mgr.Saves()
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	now := s.mgr.Now()
	for _, rec := range records {
		if seen[rec.Key] {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.Key, "SAVED", rec.RemainingAt(now))
	}
	w.Flush()
}

func (s *Shell) cmdReset(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: reset KEY")
		return
	}
	found, err := s.mgr.DeleteSave(args[0])
	switch {
	case err != nil:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	case found:
		fmt.Fprintf(s.out, "Deleted save for %s\n", args[0])
	default:
		fmt.Fprintf(s.out, "No save for %s\n", args[0])
	}
}

func (s *Shell) cmdEcho(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(s.out, "Usage: echo on|off")
		return
	}
	s.mu.Lock()
	s.echo = args[0] == "on"
	s.mu.Unlock()
}

func (s *Shell) job(key string) *job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[key]
}

// launch starts fn on a fresh goroutine with observers printing to the shell.
// The loop runs under its own context so stop works even before it started.
func (s *Shell) launch(key string, fn func(context.Context, *timer.Controller) (bool, error)) {
	s.mu.Lock()
	if _, busy := s.running[key]; busy {
		s.mu.Unlock()
		fmt.Fprintf(s.out, "%s is already running\n", key)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{c: s.mgr.GetByKey(key), cancel: cancel, exited: make(chan struct{})}
	s.running[key] = j
	s.mu.Unlock()

	c := j.c
	c.OnValueChanged(func(d duration.Duration) {
		s.mu.Lock()
		echo := s.echo
		s.mu.Unlock()
		if echo {
			fmt.Fprintf(s.out, "%s %s\n", key, d.Format())
		}
	})
	c.OnFinished(func() {
		fmt.Fprintf(s.out, "%s finished\n", key)
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(j.exited)
		defer cancel()

		finished, err := fn(ctx, c)

		s.mu.Lock()
		delete(s.running, key)
		s.mu.Unlock()

		switch {
		case err != nil:
			fmt.Fprintf(s.out, "%s: %v\n", key, err)
			s.logger.Warn("timer failed", "key", key, "error", err)
		case !finished:
			fmt.Fprintf(s.out, "%s stopped at %s\n", key, c.Format())
		}
	}()
}

// shutdown stops every running timer and waits for the loops to save.
func (s *Shell) shutdown() {
	s.mu.Lock()
	for _, j := range s.running {
		j.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
