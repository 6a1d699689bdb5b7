package session

import (
	"sync"
	"time"
)

// Scheduler arms the one-shot forced-logout timer. At most one timer
// is pending; re-arming replaces it. The deadline is a wall-clock
// timestamp, so re-arming after sleep or reload recomputes the
// remaining time instead of drifting like an in-memory countdown.
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	now   func() time.Time
}

// NewScheduler constructs an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{now: time.Now}
}

// Arm cancels any pending timer and schedules fire at expiresAt. A
// deadline that is already due fires synchronously before Arm returns.
func (s *Scheduler) Arm(expiresAt time.Time, fire func()) {
	s.mu.Lock()
	s.stopLocked()
	remaining := expiresAt.Sub(s.now())
	if remaining <= 0 {
		s.mu.Unlock()
		fire()
		return
	}
	s.timer = time.AfterFunc(remaining, fire)
	s.mu.Unlock()
}

// Cancel clears the pending timer, if any. Safe to call repeatedly.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Armed reports whether a timer is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
