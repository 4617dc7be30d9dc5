// Package scheduler runs the deferred follow-ups behind the approval flows:
// one-shot checks keyed by (flow, business id) and fixed-time daily jobs.
// Callbacks must re-validate state from the database at fire time, since
// arbitrary time has passed and the triggering flow may have completed.
package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Flow names a deferred-check family. The business id namespace differs per
// flow: registration checks are keyed by chat ID, coupon checks by payment ID.
type Flow string

const (
	FlowRegistration Flow = "registration"
	FlowCoupon       Flow = "coupon"
)

type timerKey struct {
	flow Flow
	id   int64
}

// Scheduler owns all pending one-shot timers and daily jobs.
type Scheduler struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
	done   chan struct{}
	closed bool
	log    *logrus.Logger
}

func New(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[timerKey]*time.Timer),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Defer schedules fn to run once after delay. A pending timer for the same
// (flow, id) is replaced.
func (s *Scheduler) Defer(flow Flow, id int64, delay time.Duration, fn func()) {
	key := timerKey{flow: flow, id: id}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		s.log.WithFields(logrus.Fields{"flow": flow, "id": id}).Debug("deferred check firing")
		fn()
	})
}

// Cancel stops a pending timer, reporting whether one existed. Flows call
// this when they reach a terminal state so stale reminders never fire.
func (s *Scheduler) Cancel(flow Flow, id int64) bool {
	key := timerKey{flow: flow, id: id}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if ok {
		t.Stop()
		delete(s.timers, key)
	}
	return ok
}

// Daily runs fn every day at the given local wall-clock time until Stop.
func (s *Scheduler) Daily(hour, minute int, fn func()) {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-timer.C:
				fn()
			case <-s.done:
				timer.Stop()
				return
			}
		}
	}()
}

// Every runs fn at a fixed interval until Stop. Used for housekeeping such
// as idle-session eviction.
func (s *Scheduler) Every(interval time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop cancels all pending timers and terminates daily jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

// Pending reports the number of scheduled one-shot timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
