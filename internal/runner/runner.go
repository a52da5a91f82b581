package runner

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/erddap-tools/erdgen/internal/errors"
	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/logging"
)

// DefaultMaxJobs is the default concurrency limit.
const DefaultMaxJobs = 4

// Config controls runner behavior.
type Config struct {
	// MaxJobs is the maximum number of jobs allowed to run concurrently.
	// Must be at least 1.
	MaxJobs int

	// CollectResults populates Summary.Results with every job outcome.
	// Failed results are always collected; this adds the successes.
	CollectResults bool
}

// Runner executes an ordered queue of jobs with bounded parallelism.
// Launch order equals queue order; completion order is unconstrained.
// A single Runner may be reused for multiple runs; each Run call owns its
// cursor and running set exclusively, so no locking is needed.
type Runner struct {
	cfg    Config
	bus    *event.Bus
	logger *logging.Logger
}

// New creates a Runner. Returns a configuration error if cfg.MaxJobs < 1.
func New(cfg Config, bus *event.Bus, logger *logging.Logger) (*Runner, error) {
	if cfg.MaxJobs < 1 {
		return nil, errors.NewConfigError("max jobs must be at least 1", errors.ErrBadConcurrency)
	}
	if bus == nil {
		bus = event.NewBus()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Runner{cfg: cfg, bus: bus, logger: logger}, nil
}

// exit carries one reaped process from its wait goroutine back to the
// controller. This channel is the "wait for any" primitive: the controller
// blocks on the first receive and backfills the freed slot immediately,
// without polling and without knowing which handle woke it.
type exit struct {
	index    int
	code     int
	waitErr  error
	duration time.Duration
}

// Run launches every job in order, never exceeding MaxJobs concurrently,
// and returns once the queue is exhausted and every launched process has
// been reaped.
//
// Job exit codes are recorded in the summary but never stop the queue.
// A spawn failure (the runner cannot start a process) aborts launching,
// drains the jobs already running, and is returned as a SpawnError. Context
// cancellation stops launching, interrupts running jobs, drains them, and
// returns ErrCanceled. In both cases the partial summary is still returned.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	summary := &Summary{Total: len(jobs)}

	exits := make(chan exit)
	running := make(map[int]*exec.Cmd, r.cfg.MaxJobs)
	cursor := 0
	var runErr error

	reap := func(e exit) {
		delete(running, e.index)
		job := jobs[e.index]
		result := Result{
			Job:      job,
			Index:    e.index,
			ExitCode: e.code,
			Duration: e.duration,
		}
		if e.waitErr != nil {
			result.Err = errors.NewJobError(job.Name, e.code, e.waitErr)
			summary.Failed = append(summary.Failed, result)
		}
		if r.cfg.CollectResults {
			summary.Results = append(summary.Results, result)
		}
		r.logger.Debug("job exited", "job", job.Name, "index", e.index, "exit_code", e.code)
		r.bus.Publish(event.NewJobExitedEvent(job.Name, e.index, e.code, len(running), e.duration))
	}

	for cursor < len(jobs) || len(running) > 0 {
		// Fill free slots in queue order. Never blocks while a free slot
		// and a queued job both exist.
		for runErr == nil && len(running) < r.cfg.MaxJobs && cursor < len(jobs) {
			if ctx.Err() != nil {
				runErr = errors.ErrCanceled
				break
			}

			job := jobs[cursor]
			cmd, err := r.launch(job)
			if err != nil {
				// Runner-level failure, distinct from a job's own exit code.
				runErr = errors.NewSpawnError("failed to start process", err).WithJob(job.Name)
				r.logger.Error("spawn failed", "job", job.Name, "error", err)
				break
			}

			index := cursor
			running[index] = cmd
			cursor++
			summary.Launched++

			go wait(cmd, index, exits)

			r.logger.Info("job started",
				"job", job.Name, "index", index,
				"launched", summary.Launched, "total", len(jobs), "running", len(running))
			r.bus.Publish(event.NewJobStartedEvent(job.Name, index, summary.Launched, len(jobs), len(running)))
		}

		if runErr != nil {
			break
		}

		if len(running) > 0 {
			// Wait for any child to exit, then reap every child that has
			// already exited without blocking again. A wake that reaps
			// more than one process just frees more slots for the next
			// launch pass; reaping zero extras is the common case.
			select {
			case e := <-exits:
				reap(e)
			case <-ctx.Done():
				runErr = errors.ErrCanceled
			}
			drained := false
			for !drained && len(running) > 0 {
				select {
				case e := <-exits:
					reap(e)
				default:
					drained = true
				}
			}
		}
	}

	// On cancellation or spawn failure, stop launching but never orphan a
	// process: interrupt what is running and reap it all.
	if runErr != nil && len(running) > 0 {
		for _, cmd := range running {
			if cmd.Process != nil {
				_ = cmd.Process.Signal(os.Interrupt)
			}
		}
		for len(running) > 0 {
			reap(<-exits)
		}
	}

	summary.Duration = time.Since(start)

	if runErr == nil {
		r.logger.Info("run completed",
			"total", summary.Total, "failed", summary.FailedCount(), "duration", summary.Duration)
		r.bus.Publish(event.NewRunCompletedEvent(summary.Total, summary.FailedCount(), summary.Duration))
	}

	return summary, runErr
}

// launch starts one job asynchronously, giving the process its combined
// stdout/stderr log file when configured.
func (r *Runner) launch(job Job) (*exec.Cmd, error) {
	cmd := exec.Command(job.Path, job.Args...)
	cmd.Dir = job.Dir

	if job.LogPath != "" {
		logFile, err := os.Create(job.LogPath)
		if err != nil {
			return nil, err
		}
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		if f, ok := cmd.Stdout.(*os.File); ok {
			f.Close()
		}
		return nil, err
	}
	return cmd, nil
}

// wait blocks until the process exits, then reports it on the exits channel.
// One goroutine per running job; the controller owns everything else.
func wait(cmd *exec.Cmd, index int, exits chan<- exit) {
	start := time.Now()
	waitErr := cmd.Wait()

	if f, ok := cmd.Stdout.(*os.File); ok {
		f.Close()
	}

	code := 0
	if waitErr != nil {
		code = -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
	}

	exits <- exit{index: index, code: code, waitErr: waitErr, duration: time.Since(start)}
}
