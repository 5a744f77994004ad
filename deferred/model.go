package deferred

import (
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultDelay is the quiet period after the newest write before the deferred
// side settles. It is a few frames long so the urgent change paints first.
const DefaultDelay = 120 * time.Millisecond

// idCounter gives each Model a unique ID so settle messages don't cross-talk
// between instances.
var idCounter atomic.Int64

// SettleMsg is scheduled by Model.Set. Only the message carrying the newest
// generation settles; older ones are dropped on arrival.
type SettleMsg struct {
	ID  int64
	Gen uint64
}

// SettledMsg is emitted after the deferred side of the Model with this ID
// caught up with the urgent side.
type SettledMsg struct {
	ID int64
}

// Model is the Bubble Tea binding of a deferred value pair (value receiver
// Update, pointer receiver mutators). Preemption is implicit: a newer Set
// bumps the generation, so any tick already in flight is ignored.
type Model[T comparable] struct {
	id       int64
	delay    time.Duration
	urgent   T
	deferred T
	gen      uint64
}

// NewModel returns a settled Model holding initial on both sides.
func NewModel[T comparable](initial T, delay time.Duration) Model[T] {
	if delay < 0 {
		delay = DefaultDelay
	}
	return Model[T]{
		id:       idCounter.Add(1),
		delay:    delay,
		urgent:   initial,
		deferred: initial,
	}
}

// ID returns the identifier stamped on this Model's messages.
func (m Model[T]) ID() int64 { return m.id }

// Urgent returns the most recently written value.
func (m Model[T]) Urgent() T { return m.urgent }

// Deferred returns the lagging value.
func (m Model[T]) Deferred() T { return m.deferred }

// IsPending reports whether the deferred side has not caught up yet.
func (m Model[T]) IsPending() bool { return m.urgent != m.deferred }

// Delay returns the settle delay.
func (m Model[T]) Delay() time.Duration { return m.delay }

// SetDelay changes the settle delay for subsequent writes.
func (m *Model[T]) SetDelay(d time.Duration) {
	if d >= 0 {
		m.delay = d
	}
}

// Set writes the urgent side and returns the command that will settle the
// deferred side. Writing the current urgent value is a no-op.
func (m *Model[T]) Set(v T) tea.Cmd {
	if v == m.urgent {
		return nil
	}
	m.urgent = v
	m.gen++
	id, gen := m.id, m.gen
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return SettleMsg{ID: id, Gen: gen}
	})
}

// Reset discards any in-flight settle and sets both sides to v.
func (m *Model[T]) Reset(v T) {
	m.gen++
	m.urgent = v
	m.deferred = v
}

// Update settles the deferred side when the newest SettleMsg for this Model
// arrives and then emits SettledMsg.
func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	s, ok := msg.(SettleMsg)
	if !ok || s.ID != m.id || s.Gen != m.gen {
		return m, nil
	}
	if !m.IsPending() {
		return m, nil
	}
	m.deferred = m.urgent
	id := m.id
	return m, func() tea.Msg { return SettledMsg{ID: id} }
}
