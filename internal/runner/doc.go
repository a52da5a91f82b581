// Package runner provides a bounded-parallelism executor for independent
// external commands.
//
// The runner consumes an ordered queue of jobs strictly front-to-back for
// launch order, keeps at most MaxJobs processes alive at once, and blocks
// only on a "wait for any" primitive: a completion channel fed by one wait
// goroutine per child. When any child exits the controller reaps it (and any
// others that have finished in the meantime), backfills the freed slots from
// the queue, and repeats until both the queue and the running set are empty.
//
// Individual job failures are reaped like successes: a non-zero exit never
// halts the queue and never reduces the concurrency budget. The runner's own
// failure modes are limited to invalid configuration (rejected before any
// launch) and the inability to start a process, which surfaces as a
// SpawnError distinct from any job's exit status.
package runner
