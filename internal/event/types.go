// Package event defines event types for decoupling components in erdgen.
// These events let the runner and checker report progress to the CLI and
// progress UI without direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "job.started", "run.completed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Job Lifecycle Events
// -----------------------------------------------------------------------------

// JobStartedEvent is emitted when the runner launches a job.
// Launched is the 1-based count of jobs launched so far; it increases
// monotonically and equals Index+1 because jobs launch in queue order.
type JobStartedEvent struct {
	baseEvent
	Job      string // Job name (usually the dataset name)
	Index    int    // Position in the input queue (0-based)
	Launched int    // Jobs launched so far, including this one
	Total    int    // Total jobs in the queue
	Running  int    // Size of the running set after this launch
}

// NewJobStartedEvent creates a JobStartedEvent.
func NewJobStartedEvent(job string, index, launched, total, running int) JobStartedEvent {
	return JobStartedEvent{
		baseEvent: newBaseEvent("job.started"),
		Job:       job,
		Index:     index,
		Launched:  launched,
		Total:     total,
		Running:   running,
	}
}

// JobExitedEvent is emitted when a job's process exits, successfully or not.
type JobExitedEvent struct {
	baseEvent
	Job      string        // Job name
	Index    int           // Position in the input queue (0-based)
	ExitCode int           // Process exit code (0 = success)
	Running  int           // Size of the running set after reaping
	Duration time.Duration // Wall time from launch to exit
}

// NewJobExitedEvent creates a JobExitedEvent.
func NewJobExitedEvent(job string, index, exitCode, running int, duration time.Duration) JobExitedEvent {
	return JobExitedEvent{
		baseEvent: newBaseEvent("job.exited"),
		Job:       job,
		Index:     index,
		ExitCode:  exitCode,
		Running:   running,
		Duration:  duration,
	}
}

// RunCompletedEvent is emitted once when the queue is exhausted and the
// running set has drained.
type RunCompletedEvent struct {
	baseEvent
	Total    int           // Total jobs launched
	Failed   int           // Jobs that exited non-zero
	Duration time.Duration // Wall time for the whole run
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(total, failed int, duration time.Duration) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent: newBaseEvent("run.completed"),
		Total:     total,
		Failed:    failed,
		Duration:  duration,
	}
}

// -----------------------------------------------------------------------------
// URL Check Events
// -----------------------------------------------------------------------------

// CheckResultEvent is emitted for each URL the checker finishes testing.
type CheckResultEvent struct {
	baseEvent
	URL       string // Base dataset URL
	Endpoint  string // Actual endpoint tested (.das or .nccsvMetadata)
	Available bool   // Whether the endpoint answered with a 2xx status
	Attempts  int    // Number of attempts made
	Error     string // Last error message (if unavailable)
}

// NewCheckResultEvent creates a CheckResultEvent.
func NewCheckResultEvent(url, endpoint string, available bool, attempts int, errMsg string) CheckResultEvent {
	return CheckResultEvent{
		baseEvent: newBaseEvent("check.result"),
		URL:       url,
		Endpoint:  endpoint,
		Available: available,
		Attempts:  attempts,
		Error:     errMsg,
	}
}

// CheckCompletedEvent is emitted once after all URLs have been tested.
type CheckCompletedEvent struct {
	baseEvent
	Total     int // URLs tested
	Available int // URLs that answered
}

// NewCheckCompletedEvent creates a CheckCompletedEvent.
func NewCheckCompletedEvent(total, available int) CheckCompletedEvent {
	return CheckCompletedEvent{
		baseEvent: newBaseEvent("check.completed"),
		Total:     total,
		Available: available,
	}
}
