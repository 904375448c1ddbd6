package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Scheduler.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// OverlapPolicy controls what happens when a job's interval elapses while a
// previous firing of the same job is still running.
type OverlapPolicy int

const (
	// OverlapSkip drops the new firing; the job runs again on the next
	// interval after the in-flight firing completes.
	OverlapSkip OverlapPolicy = iota

	// OverlapAllow dispatches the new firing concurrently with the
	// in-flight one.
	OverlapAllow
)

// ParsePolicy converts a config string ("skip", "allow") to an OverlapPolicy.
func ParsePolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "skip", "":
		return OverlapSkip, nil
	case "allow":
		return OverlapAllow, nil
	default:
		return OverlapSkip, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// job is one registered periodic callable.
type job struct {
	id       string
	name     string
	interval time.Duration
	policy   OverlapPolicy
	fn       func()

	// running guards against overlapping firings under OverlapSkip.
	running atomic.Bool
}

// Scheduler fires registered callables at fixed intervals.
//
// One Scheduler is shared by the whole process. Each job ticks on its own
// goroutine and every firing is dispatched onto a fresh goroutine, so a slow
// callable never delays its own ticker, other jobs, or Stop.
//
// Jobs are registered with Add before Start; the job table is fixed once
// dispatch begins.
//
// Thread Safety:
//   - Add, Start, Stop and JobCount are safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []*job
	started bool
	stopped bool
	stop    chan struct{}
	wg      sync.WaitGroup
	logger  Logger
}

// New creates a scheduler with an empty job table.
func New() *Scheduler {
	return &Scheduler{
		stop:   make(chan struct{}),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Add registers a periodic job.
//
// Parameters:
//   - name: Human-readable job name for logs (not required to be unique)
//   - interval: Time between firings; must be positive
//   - policy: What to do when a firing overlaps the previous one
//   - fn: The callable to fire
//
// Returns:
//   - string: Generated job id
//   - error: ErrInvalidInterval, ErrNilCallable, or ErrAlreadyStarted
func (s *Scheduler) Add(name string, interval time.Duration, policy OverlapPolicy, fn func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	if fn == nil {
		return "", ErrNilCallable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return "", ErrAlreadyStarted
	}

	j := &job{
		id:       uuid.NewString(),
		name:     name,
		interval: interval,
		policy:   policy,
		fn:       fn,
	}
	s.jobs = append(s.jobs, j)
	return j.id, nil
}

// JobCount returns the number of registered jobs.
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start begins dispatching all registered jobs.
//
// Returns:
//   - error: ErrAlreadyStarted if Start was called before, ErrStopped if
//     the scheduler was already stopped
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runJob(j)
	}

	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop halts job dispatch and waits for the per-job tickers to exit.
//
// In-flight firings are not interrupted; a long-running callable may outlive
// Stop. Calling Stop more than once, or before Start, is safe.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	close(s.stop)
	s.mu.Unlock()

	if started {
		s.wg.Wait()
	}
	s.logger.Info("scheduler stopped")
}

// runJob is the per-job ticker loop. It exits when Stop is called.
func (s *Scheduler) runJob(j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.dispatch(j)
		case <-s.stop:
			return
		}
	}
}

// dispatch fires one job execution on its own goroutine, honoring the
// job's overlap policy.
func (s *Scheduler) dispatch(j *job) {
	if j.policy == OverlapSkip {
		if !j.running.CompareAndSwap(false, true) {
			s.logger.Debug("job firing skipped, previous still running",
				"job", j.name,
				"job_id", j.id,
			)
			return
		}
	}

	go func() {
		defer func() {
			if j.policy == OverlapSkip {
				j.running.Store(false)
			}
			if r := recover(); r != nil {
				s.logger.Error("job panic recovered",
					"job", j.name,
					"job_id", j.id,
					"panic", r,
				)
			}
		}()
		j.fn()
	}()
}
