// Package scheduler runs one-shot in-process timers for reminders.
// Jobs live only in memory; pending jobs are lost on restart.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*time.Timer),
		logger: logger,
	}
}

// Schedule registers fn to run once at the given time, keyed by id.
// Scheduling the same id again replaces the pending job. A time in the
// past fires immediately.
func (s *Scheduler) Schedule(id int64, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, exists := s.timers[id]; exists {
		timer.Stop()
		s.logger.Warn("Replacing scheduled job", zap.Int64("job_id", id))
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})

	s.logger.Info("Scheduled job",
		zap.Int64("job_id", id),
		zap.Time("run_at", at))
}

// Cancel stops a pending job if one exists.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, exists := s.timers[id]; exists {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of jobs not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all pending jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
