package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/metrics"
)

// Job is a callback registered to fire at a simulated instant.
// Execute returns the next simulated time at which the job wants to run again;
// anything not later than the current clock makes the job one-shot.
type Job struct {
	ID      uint64
	At      time.Duration
	Execute func() time.Duration

	seq uint64
}

func less(a, b *Job) bool {
	if a.At != b.At {
		return a.At < b.At
	}
	return a.seq < b.seq
}

// Scheduler is a discrete-event clock. Time only moves when the owner calls
// AdvanceTo, Tick or Step; jobs fire in (time, registration order).
type Scheduler struct {
	mu     sync.Mutex
	queue  *btree.BTreeG[*Job]
	jobs   map[uint64]*Job
	now    time.Duration
	seq    uint64
	nextID uint64
}

func New() *Scheduler {
	return &Scheduler{
		queue: btree.NewG[*Job](16, less),
		jobs:  make(map[uint64]*Job),
	}
}

// Now returns the simulated time elapsed since the start of the run.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Schedule registers fn to fire at the simulated instant at and returns the job id.
func (s *Scheduler) Schedule(at time.Duration, fn func() time.Duration) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.seq++
	job := &Job{ID: s.nextID, At: at, Execute: fn, seq: s.seq}
	s.jobs[job.ID] = job
	s.queue.ReplaceOrInsert(job)
	metrics.SchedulerPending.Set(float64(s.queue.Len()))
	return job.ID
}

// Remove cancels a pending job. It reports whether the job was still registered.
func (s *Scheduler) Remove(jobID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return false
	}
	delete(s.jobs, jobID)
	s.queue.Delete(job)
	metrics.SchedulerPending.Set(float64(s.queue.Len()))
	return true
}

// AdvanceTo fires every job due at or before t, then moves the clock to t.
// It returns the number of callbacks executed.
func (s *Scheduler) AdvanceTo(t time.Duration) int {
	fired := 0
	for {
		job, ok := s.popDue(t, false)
		if !ok {
			break
		}
		s.run(job)
		fired++
	}

	s.mu.Lock()
	if t > s.now {
		s.now = t
	}
	now := s.now
	s.mu.Unlock()

	metrics.SimulatedTime.Set(now.Seconds())
	if fired > 0 {
		slog.Debug("clock advanced", "component", "scheduler", "now", now, "fired", fired)
	}
	return fired
}

// Tick advances the clock by d.
func (s *Scheduler) Tick(d time.Duration) int {
	return s.AdvanceTo(s.Now() + d)
}

// Step fires the earliest pending job, moving the clock to its time.
func (s *Scheduler) Step() bool {
	job, ok := s.popDue(0, true)
	if !ok {
		return false
	}
	s.run(job)
	metrics.SimulatedTime.Set(s.Now().Seconds())
	return true
}

// Pending returns the number of registered jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// NextTime returns the time of the earliest pending job.
func (s *Scheduler) NextTime() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.queue.Min()
	if !ok {
		return 0, false
	}
	return job.At, true
}

// Reset drops every pending job and rewinds the clock to zero.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear(false)
	clear(s.jobs)
	s.now = 0
	metrics.SchedulerPending.Set(0)
	metrics.SimulatedTime.Set(0)
}

func (s *Scheduler) popDue(t time.Duration, force bool) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.queue.Min()
	if !ok || (!force && job.At > t) {
		return nil, false
	}
	s.queue.DeleteMin()
	if job.At > s.now {
		s.now = job.At
	}
	metrics.SchedulerPending.Set(float64(s.queue.Len()))
	return job, true
}

// run executes job outside the lock so that callbacks may schedule or remove jobs.
func (s *Scheduler) run(job *Job) {
	next := job.Execute()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		// removed while executing
		return
	}
	if next <= s.now {
		delete(s.jobs, job.ID)
		return
	}
	s.seq++
	job.At = next
	job.seq = s.seq
	s.queue.ReplaceOrInsert(job)
	metrics.SchedulerPending.Set(float64(s.queue.Len()))
}
