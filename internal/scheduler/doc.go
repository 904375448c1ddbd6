// Package scheduler provides the process-wide periodic job facility.
//
// Every periodic publisher and control loop in the fleet registers a job
// here. Each job ticks independently and each firing runs on its own
// goroutine with panic recovery, so one stalled callable cannot delay the
// dispatch of any other job.
//
// # Overlap policies
//
// When an interval elapses while the previous firing of the same job is
// still running, the job's OverlapPolicy decides the outcome:
//
//   - OverlapSkip (default): the firing is dropped and logged at debug level
//   - OverlapAllow: the firing runs concurrently with the in-flight one
//
// The default comes from scheduler.overlap_policy in config.yaml.
//
// # Lifecycle
//
// Jobs are registered with Add during fleet construction, then Start begins
// dispatch and Stop halts it. Stop waits for the per-job tickers but not for
// in-flight firings; a long-running callable may outlive Stop.
package scheduler
