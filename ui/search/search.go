// Package search is the query box above the list. Typing updates the input
// immediately (urgent) while the query used for filtering lags behind through
// a deferred.Model, so a burst of keystrokes filters once, on the last value.
package search

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/vscroll/deferred"
	"github.com/miosa/vscroll/style"
	"github.com/miosa/vscroll/ui/anim"
)

// Model couples the text input with its deferred query.
type Model struct {
	input   textinput.Model
	query   deferred.Model[string]
	spinner anim.Model
	width   int

	matches, total int
}

// New returns an empty search box whose query settles after delay.
func New(delay time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter…"
	ti.Prompt = "/ "

	s := ti.Styles()
	s.Focused.Prompt = style.SearchPrompt
	s.Blurred.Prompt = style.Faint
	ti.SetStyles(s)

	return Model{
		input:   ti,
		query:   deferred.NewModel("", delay),
		spinner: anim.New("filtering"),
	}
}

// ---------------------------------------------------------------------------
// Focus
// ---------------------------------------------------------------------------

// Focus gives the input keyboard focus.
func (m *Model) Focus() tea.Cmd { return m.input.Focus() }

// Blur removes keyboard focus. Pending queries still settle.
func (m *Model) Blur() { m.input.Blur() }

// Focused reports whether the input has focus.
func (m Model) Focused() bool { return m.input.Focused() }

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// SetWidth sets the total width of the search line.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.SetWidth(max(1, w-28))
}

// SetDelay changes how long the query waits for typing to stop.
func (m *Model) SetDelay(d time.Duration) { m.query.SetDelay(d) }

// SetCounts records the filter result shown on the right.
func (m *Model) SetCounts(matches, total int) {
	m.matches, m.total = matches, total
}

// Restore sets both the input and the settled query to v without a settle
// round-trip, e.g. when resuming a saved session.
func (m *Model) Restore(v string) {
	m.input.SetValue(v)
	m.query.Reset(v)
	m.spinner.Stop()
}

// Clear empties the input and starts settling the empty query.
func (m *Model) Clear() tea.Cmd {
	m.input.SetValue("")
	return m.write("")
}

// Discard drops an in-flight query. The settled query snaps to whatever is
// in the input now, so a parent replacing its data can filter once against
// the current text instead of waiting for a stale settle.
func (m *Model) Discard() {
	m.query.Reset(m.input.Value())
	m.spinner.Stop()
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Input returns the text as typed (urgent).
func (m Model) Input() string { return m.input.Value() }

// Query returns the settled query (deferred).
func (m Model) Query() string { return m.query.Deferred() }

// IsPending reports whether the query still lags the input.
func (m Model) IsPending() bool { return m.query.IsPending() }

// QueryID identifies deferred.SettledMsg messages from this box.
func (m Model) QueryID() int64 { return m.query.ID() }

// Delay returns the settle delay.
func (m Model) Delay() time.Duration { return m.query.Delay() }

// ---------------------------------------------------------------------------
// Update (bubbletea)
// ---------------------------------------------------------------------------

// Update routes settle ticks to the deferred query, spinner ticks to the
// spinner and everything else to the input while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deferred.SettleMsg:
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		if !m.query.IsPending() {
			m.spinner.Stop()
		}
		return m, cmd

	case anim.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.input.Focused() {
		return m, nil
	}
	var cmds []tea.Cmd
	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if v := m.input.Value(); v != prev {
		cmds = append(cmds, m.write(v))
	}
	return m, tea.Batch(cmds...)
}

// write sends v to the urgent side and runs the spinner while it lags.
func (m *Model) write(v string) tea.Cmd {
	settle := m.query.Set(v)
	if !m.query.IsPending() {
		m.spinner.Stop()
		return settle
	}
	return tea.Batch(settle, m.spinner.Start())
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View renders the input with either the spinner or the match count on the
// right.
func (m Model) View() string {
	left := m.input.View()
	var right string
	switch {
	case m.query.IsPending():
		right = m.spinner.View()
	case m.query.Deferred() != "":
		right = style.SearchCount.Render(fmt.Sprintf("%d / %d", m.matches, m.total))
	}
	if m.width <= 0 {
		return left
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
