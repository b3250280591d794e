package schedule

import (
	"context"
	"sync"
	"time"
)

// Job is a deferred piece of work keyed for deduplication. The key is
// usually a sound ID; a job with the same key and run time as one already
// queued is dropped so periodic polling doesn't double-schedule a run.
type Job struct {
	Key     string
	RunAt   time.Time
	Execute func(context.Context)
}

// Scheduler queues jobs to run at their appointed times. It keeps one
// pending run per key at a time.
type Scheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		scheduled: make(map[string]time.Time),
	}
}

// Submit queues the job unless an identical run is already pending. It
// reports whether the job was queued. The job fires in its own goroutine;
// cancelling the context abandons runs that have not fired yet.
func (s *Scheduler) Submit(ctx context.Context, job Job) bool {
	s.mu.Lock()
	if pending, ok := s.scheduled[job.Key]; ok && pending.Equal(job.RunAt) {
		s.mu.Unlock()
		return false
	}
	s.scheduled[job.Key] = job.RunAt
	s.mu.Unlock()

	go func() {
		timer := time.NewTimer(time.Until(job.RunAt))
		defer timer.Stop()

		select {
		case <-timer.C:
			job.Execute(ctx)
		case <-ctx.Done():
		}

		s.mu.Lock()
		if pending, ok := s.scheduled[job.Key]; ok && pending.Equal(job.RunAt) {
			delete(s.scheduled, job.Key)
		}
		s.mu.Unlock()
	}()
	return true
}
