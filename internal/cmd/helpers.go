package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/erddap-tools/erdgen/internal/config"
	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/logging"
)

// newLogger builds the run logger from the logging config. Returns a no-op
// logger when file logging is disabled.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}

	dir := cfg.Logging.Dir
	if dir == "" {
		dir = config.ConfigDir()
	}
	return logging.NewRotatingLogger(dir, logging.ParseLevel(cfg.Logging.Level), logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// subscribePlainProgress prints one line per runner event, for logs and
// non-interactive shells. Returns the subscription IDs so callers can
// unsubscribe once the run finishes.
func subscribePlainProgress(bus *event.Bus) []string {
	return []string{
		bus.Subscribe("job.started", func(e event.Event) {
			ev := e.(event.JobStartedEvent)
			fmt.Printf("Started job %d/%d (%d running): %s\n", ev.Launched, ev.Total, ev.Running, ev.Job)
		}),
		bus.Subscribe("job.exited", func(e event.Event) {
			ev := e.(event.JobExitedEvent)
			if ev.ExitCode != 0 {
				fmt.Printf("Job failed (exit %d): %s\n", ev.ExitCode, ev.Job)
			}
		}),
		bus.Subscribe("run.completed", func(e event.Event) {
			ev := e.(event.RunCompletedEvent)
			fmt.Printf("All done! Generated XML for %d datasets.\n", ev.Total)
			if ev.Failed > 0 {
				fmt.Printf("%d datasets failed, see the dataset logs.\n", ev.Failed)
			}
		}),
	}
}
