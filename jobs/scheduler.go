package jobs

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

type JobStatus string

const (
	StatusNotScheduled JobStatus = "NOT_SCHEDULED"
	StatusScheduled    JobStatus = "SCHEDULED"
	StatusRunning      JobStatus = "RUNNING"
	StatusFailed       JobStatus = "FAILED"
)

type Constraint string

const (
	ConstraintNetwork  Constraint = "network"
	ConstraintCharging Constraint = "charging"
)

type UniquenessPolicy string

const (
	PolicyReplace      UniquenessPolicy = "REPLACE"
	PolicyKeepExisting UniquenessPolicy = "KEEP_EXISTING"
)

// RetryPolicy bounds how a failed run is retried before the job falls back
// to its next natural cycle.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialBackoff: 30 * time.Second, MaxBackoff: 10 * time.Minute}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// JobDefinition is the configuration-level description of a periodic job.
type JobDefinition struct {
	Name        string
	Interval    time.Duration
	Flex        time.Duration
	Constraints []Constraint
	Uniqueness  UniquenessPolicy
	Retry       RetryPolicy
}

type Task func(ctx context.Context) error

// ConstraintFunc reports whether an environmental constraint is currently
// satisfied. An unmet constraint defers the run without counting as a
// failure.
type ConstraintFunc func(c Constraint) bool

// AllConstraintsMet is the production default on always-on server hardware.
func AllConstraintsMet(Constraint) bool { return true }

const constraintDeferDelay = time.Minute

// Scheduler orchestrates named periodic jobs. Each job runs on its own
// interval with a flex window around the nominal due time. Task bodies run
// on a bounded worker pool so one hung external call cannot starve the rest.
type Scheduler struct {
	mu          sync.Mutex
	entries     map[string]*entry
	sem         chan struct{}
	constraints ConstraintFunc
	stopped     bool
}

type entry struct {
	def       JobDefinition
	task      Task
	timer     *time.Timer
	status    JobStatus
	attempt   int
	cancelled bool
	lastErr   error
	lastRun   time.Time
}

func NewScheduler(workers int, constraints ConstraintFunc) *Scheduler {
	if workers <= 0 {
		workers = 4
	}
	if constraints == nil {
		constraints = AllConstraintsMet
	}
	return &Scheduler{
		entries:     make(map[string]*entry),
		sem:         make(chan struct{}, workers),
		constraints: constraints,
	}
}

// Register schedules a job. With PolicyKeepExisting an already-registered
// name is a no-op; with PolicyReplace the existing schedule is cancelled and
// replaced by the new definition.
func (s *Scheduler) Register(def JobDefinition, task Task) error {
	if def.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if def.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", def.Name)
	}
	if def.Retry == (RetryPolicy{}) {
		def.Retry = DefaultRetryPolicy()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("scheduler is stopped")
	}

	if existing, ok := s.entries[def.Name]; ok {
		if def.Uniqueness == PolicyKeepExisting {
			return nil
		}
		existing.cancelled = true
		if existing.timer != nil {
			existing.timer.Stop()
		}
	}

	e := &entry{def: def, task: task, status: StatusScheduled}
	s.entries[def.Name] = e
	s.scheduleLocked(e, s.nextDelay(def))
	return nil
}

// Cancel stops future runs of the job. An in-flight run is not interrupted
// and may still complete after Cancel returns.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		e.cancelled = true
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, name)
	}
}

func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for name, e := range s.entries {
		e.cancelled = true
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, name)
	}
}

func (s *Scheduler) Status(name string) JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		return e.status
	}
	return StatusNotScheduled
}

// Interval reports the currently scheduled interval for a job, or zero when
// the job is not registered.
func (s *Scheduler) Interval(name string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		return e.def.Interval
	}
	return 0
}

// LastError reports the failure of the most recent run, nil after a success.
func (s *Scheduler) LastError(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		return e.lastErr
	}
	return nil
}

// Trigger runs a registered job immediately, outside its normal cadence.
func (s *Scheduler) Trigger(name string) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if ok {
		go s.run(e)
	}
}

// nextDelay picks a wakeup inside [interval-flex, interval+flex] so nearby
// jobs can be batched.
func (s *Scheduler) nextDelay(def JobDefinition) time.Duration {
	delay := def.Interval
	if def.Flex > 0 {
		jitter := time.Duration((2*rand.Float64() - 1) * float64(def.Flex))
		delay += jitter
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// scheduleLocked replaces the entry's pending wakeup. The previous timer must
// be stopped first or a triggered run would leave two timer chains running.
func (s *Scheduler) scheduleLocked(e *entry, delay time.Duration) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(delay, func() {
		s.run(e)
	})
}

// run executes one cycle of a job on the worker pool, catching panics at the
// job-body boundary so a single failure never crashes the scheduler.
func (s *Scheduler) run(e *entry) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	s.mu.Lock()
	if e.cancelled {
		s.mu.Unlock()
		return
	}

	for _, c := range e.def.Constraints {
		if !s.constraints(c) {
			log.Printf("job %s deferred: constraint %q not satisfied", e.def.Name, c)
			s.scheduleLocked(e, constraintDeferDelay)
			s.mu.Unlock()
			return
		}
	}

	e.status = StatusRunning
	e.lastRun = time.Now()
	task := e.task
	name := e.def.Name
	s.mu.Unlock()

	err := runTask(name, task)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e.cancelled {
		return
	}

	if err == nil {
		e.status = StatusScheduled
		e.attempt = 0
		e.lastErr = nil
		s.scheduleLocked(e, s.nextDelay(e.def))
		return
	}

	e.lastErr = err
	e.attempt++
	if e.attempt <= e.def.Retry.MaxRetries {
		backoff := e.def.Retry.backoff(e.attempt)
		log.Printf("job %s failed (attempt %d/%d), retrying in %s: %v",
			name, e.attempt, e.def.Retry.MaxRetries, backoff, err)
		e.status = StatusFailed
		s.scheduleLocked(e, backoff)
		return
	}

	// Retries exhausted: log and return to the natural cycle. A job is never
	// permanently disabled by a single bad run.
	log.Printf("job %s failed after %d retries, rescheduling next cycle: %v", name, e.def.Retry.MaxRetries, err)
	e.status = StatusScheduled
	e.attempt = 0
	s.scheduleLocked(e, s.nextDelay(e.def))
}

func runTask(name string, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
		}
	}()
	return task(context.Background())
}
