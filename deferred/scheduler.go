// Package deferred keeps an input responsive while an expensive value derived
// from it lags behind and catches up.
//
// A deferred value is a pair (urgent, deferred). Urgent changes immediately on
// every write. Deferred follows after a delay; a burst of writes coalesces
// into one settle on the newest value, and a settle scheduled for an older
// write is discarded once a newer one arrives. Deferred therefore only ever
// holds values urgent held before it, and never goes back to a superseded one.
//
// Two bindings are provided: Value, which runs on any Scheduler and is safe
// for concurrent use, and Model, a Bubble Tea component that settles through
// tea.Tick messages on the program's event loop.
package deferred

import (
	"sync"
	"time"
)

// Token identifies a scheduled callback. The zero Token is never issued.
type Token uint64

// Scheduler runs callbacks after a delay. Implementations may use timers,
// a frame loop or a manual clock.
type Scheduler interface {
	// Submit schedules fn to run once after delay.
	Submit(delay time.Duration, fn func()) Token
	// Cancel drops a callback that has not run yet. It reports whether the
	// callback was still pending.
	Cancel(t Token) bool
	// Replace cancels t (if pending) and schedules fn in its place.
	Replace(t Token, delay time.Duration, fn func()) Token
}

// TimerScheduler is a Scheduler backed by time.AfterFunc. Callbacks run on
// their own goroutines.
type TimerScheduler struct {
	mu      sync.Mutex
	next    Token
	pending map[Token]*time.Timer
	closed  bool
}

// NewTimerScheduler returns a ready TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{pending: make(map[Token]*time.Timer)}
}

// Submit implements Scheduler. After Close it returns a token that never
// fires.
func (s *TimerScheduler) Submit(delay time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(delay, fn)
}

func (s *TimerScheduler) submitLocked(delay time.Duration, fn func()) Token {
	s.next++
	tok := s.next
	if s.closed {
		return tok
	}
	s.pending[tok] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, ok := s.pending[tok]
		delete(s.pending, tok)
		s.mu.Unlock()
		// Cancelled between firing and acquiring the lock.
		if !ok {
			return
		}
		fn()
	})
	return tok
}

// Cancel implements Scheduler.
func (s *TimerScheduler) Cancel(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(t)
}

func (s *TimerScheduler) cancelLocked(t Token) bool {
	tm, ok := s.pending[t]
	if !ok {
		return false
	}
	tm.Stop()
	delete(s.pending, t)
	return true
}

// Replace implements Scheduler.
func (s *TimerScheduler) Replace(t Token, delay time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(t)
	return s.submitLocked(delay, fn)
}

// Pending returns the number of callbacks waiting to run.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels everything pending. Later submissions never fire.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.pending {
		s.cancelLocked(t)
	}
	s.closed = true
}

// ManualScheduler is a Scheduler driven by an explicit clock. Nothing runs
// until Advance is called. Useful for deterministic tests and headless
// rendering.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	next  Token
	tasks map[Token]manualTask
}

type manualTask struct {
	at  time.Duration
	seq Token
	fn  func()
}

// NewManualScheduler returns a ManualScheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[Token]manualTask)}
}

// Submit implements Scheduler.
func (s *ManualScheduler) Submit(delay time.Duration, fn func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.tasks[s.next] = manualTask{at: s.now + delay, seq: s.next, fn: fn}
	return s.next
}

// Cancel implements Scheduler.
func (s *ManualScheduler) Cancel(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[t]
	delete(s.tasks, t)
	return ok
}

// Replace implements Scheduler.
func (s *ManualScheduler) Replace(t Token, delay time.Duration, fn func()) Token {
	s.Cancel(t)
	return s.Submit(delay, fn)
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance moves the clock forward by d and runs every callback that came due,
// in due-time then submission order. Callbacks run without the lock held and
// may schedule more work; work that comes due within the same window runs too.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var (
			due   manualTask
			tok   Token
			found bool
		)
		for t, task := range s.tasks {
			if task.at > deadline {
				continue
			}
			if !found || task.at < due.at || (task.at == due.at && task.seq < due.seq) {
				due, tok, found = task, t, true
			}
		}
		if !found {
			s.now = deadline
			s.mu.Unlock()
			return
		}
		delete(s.tasks, tok)
		if due.at > s.now {
			s.now = due.at
		}
		s.mu.Unlock()
		due.fn()
	}
}
