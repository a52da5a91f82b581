package runner

import "time"

// Status represents the lifecycle state of a job.
// Jobs move Queued -> Running -> Exited; terminal state is final.
type Status string

const (
	// StatusQueued indicates the job is waiting to be launched.
	StatusQueued Status = "queued"

	// StatusRunning indicates the job's process is executing.
	StatusRunning Status = "running"

	// StatusExited indicates the job's process has terminated,
	// regardless of exit code.
	StatusExited Status = "exited"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Job is one external command to be executed to completion, independent of
// all others. Jobs are immutable once enqueued; identity is the job's
// position in the input sequence.
type Job struct {
	// Name is a human-readable identifier used in progress output and logs.
	Name string

	// Path is the executable to run.
	Path string

	// Args is the argument list passed to the executable.
	Args []string

	// Dir is the working directory for the process. Empty means inherit.
	Dir string

	// LogPath, when non-empty, receives the combined stdout and stderr of
	// the process. When empty, output is discarded.
	LogPath string
}

// Result records the outcome of one exited job.
type Result struct {
	Job      Job
	Index    int
	ExitCode int
	Duration time.Duration
	// Err is non-nil when the job exited non-zero. It is recorded, never
	// acted on: job failures do not stop the queue.
	Err error
}

// Summary describes a completed run. The Failed slice is an opt-in
// observation: callers that want the original silent-ignore behavior simply
// never look at it.
type Summary struct {
	// Total is the number of jobs in the input queue.
	Total int

	// Launched is the number of jobs actually started. It equals Total
	// unless the run was canceled or a spawn error aborted launching.
	Launched int

	// Failed holds results for jobs that exited non-zero, in completion order.
	Failed []Result

	// Results holds every job result in completion order. Populated only
	// when Config.CollectResults is set.
	Results []Result

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// FailedCount returns the number of jobs that exited non-zero.
func (s *Summary) FailedCount() int {
	return len(s.Failed)
}
