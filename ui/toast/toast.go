// Package toast provides auto-dismissing notifications, used for config
// reloads, dataset regeneration and render faults.
package toast

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/vscroll/style"
)

// Level classifies toast severity.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
	pruneRate = 500 * time.Millisecond
)

// TickMsg prunes expired toasts.
type TickMsg struct{}

type toast struct {
	message string
	level   Level
	expiry  time.Time
}

// Model manages a queue of auto-dismissing toasts.
type Model struct {
	queue   []toast
	ticking bool
	now     func() time.Time
}

// New creates an empty Model.
func New() Model {
	return Model{now: time.Now}
}

// Add enqueues a toast and returns the prune tick when none is running.
// Oldest toasts are dropped past maxToasts.
func (m *Model) Add(message string, level Level) tea.Cmd {
	m.queue = append(m.queue, toast{
		message: message,
		level:   level,
		expiry:  m.clock().Add(toastTTL),
	})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tick()
}

// Update prunes expired toasts on TickMsg and keeps ticking while any remain.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); !ok {
		return m, nil
	}
	now := m.clock()
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
	if len(m.queue) == 0 {
		m.ticking = false
		return m, nil
	}
	return m, tick()
}

// Len reports how many toasts are visible.
func (m Model) Len() int { return len(m.queue) }

// View renders visible toasts as right-aligned colored lines.
func (m Model) View(termWidth int) string {
	if len(m.queue) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.queue))
	for _, t := range m.queue {
		icon, col := iconColor(t.level)
		rendered := lipgloss.NewStyle().Foreground(col).Render(fmt.Sprintf(" %s %s ", icon, t.message))
		pad := max(0, termWidth-lipgloss.Width(rendered))
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func (m Model) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

func tick() tea.Cmd {
	return tea.Tick(pruneRate, func(time.Time) tea.Msg { return TickMsg{} })
}

func iconColor(level Level) (string, color.Color) {
	switch level {
	case Warning:
		return "⚠", style.Warning
	case Error:
		return "✘", style.Error
	default:
		return "✓", style.Success
	}
}
