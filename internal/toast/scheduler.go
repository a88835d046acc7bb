package toast

import "time"

// Waker reports the next instant a toast store needs attention.
type Waker interface {
	NextWakeup() (time.Time, bool)
}

// Scheduler turns a store's next expiry into a single pending wake-up, so
// a host can sleep until exactly the next expiry instead of polling.
type Scheduler struct {
	source    Waker
	deadline  time.Time
	scheduled bool
}

// NewScheduler creates a Scheduler for the given store.
func NewScheduler(source Waker) *Scheduler {
	return &Scheduler{source: source}
}

// Next returns how long to wait before the next wake-up. The second
// result is false when the store is empty or the same deadline has
// already been handed out and has not fired yet.
func (s *Scheduler) Next(now time.Time) (time.Duration, bool) {
	next, ok := s.source.NextWakeup()
	if !ok {
		s.scheduled = false
		s.deadline = time.Time{}
		return 0, false
	}

	if s.scheduled && next.Equal(s.deadline) {
		return 0, false
	}

	s.deadline = next
	s.scheduled = true

	if d := next.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}

// Fired marks the pending wake-up as delivered.
func (s *Scheduler) Fired() {
	s.scheduled = false
}

// Deadline returns the pending wake-up instant, if any.
func (s *Scheduler) Deadline() (time.Time, bool) {
	return s.deadline, s.scheduled
}
