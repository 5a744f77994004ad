package deferred

import (
	"sync"
	"time"
)

// Value is a deferred value pair driven by a Scheduler. It is safe for
// concurrent use. The zero Value is not usable; construct with NewValue.
type Value[T comparable] struct {
	mu       sync.Mutex
	sched    Scheduler
	delay    time.Duration
	urgent   T
	deferred T
	gen      uint64
	token    Token
	onSettle func(T)
}

// ValueOption configures a Value.
type ValueOption[T comparable] func(*Value[T])

// WithDelay sets how long the deferred side waits after the newest write.
func WithDelay[T comparable](d time.Duration) ValueOption[T] {
	return func(v *Value[T]) {
		if d >= 0 {
			v.delay = d
		}
	}
}

// OnSettle registers fn to run each time the deferred side catches up. fn
// runs on the scheduler's goroutine without the Value's lock held.
func OnSettle[T comparable](fn func(T)) ValueOption[T] {
	return func(v *Value[T]) { v.onSettle = fn }
}

// NewValue returns a settled Value holding initial on both sides.
func NewValue[T comparable](s Scheduler, initial T, opts ...ValueOption[T]) *Value[T] {
	v := &Value[T]{
		sched:    s,
		delay:    DefaultDelay,
		urgent:   initial,
		deferred: initial,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Set updates the urgent side immediately and (re)schedules the deferred side.
// A settle still pending for an earlier Set is replaced.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.urgent = x
	v.gen++
	gen := v.gen
	v.token = v.sched.Replace(v.token, v.delay, func() { v.settle(gen, x) })
}

func (v *Value[T]) settle(gen uint64, x T) {
	v.mu.Lock()
	// A newer Set or a Reset superseded this settle.
	if gen != v.gen {
		v.mu.Unlock()
		return
	}
	v.deferred = x
	v.token = 0
	fn := v.onSettle
	v.mu.Unlock()
	if fn != nil {
		fn(x)
	}
}

// Reset discards any in-flight settle and sets both sides to x.
func (v *Value[T]) Reset(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.sched.Cancel(v.token)
	v.token = 0
	v.urgent = x
	v.deferred = x
}

// Urgent returns the most recently written value.
func (v *Value[T]) Urgent() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.urgent
}

// Deferred returns the lagging value.
func (v *Value[T]) Deferred() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deferred
}

// IsPending reports whether the deferred side has not caught up yet.
func (v *Value[T]) IsPending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.urgent != v.deferred
}
