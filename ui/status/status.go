// Package status provides the bottom status bar. Drive it via setter methods;
// it has no Update loop.
package status

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/miosa/vscroll/style"
	"github.com/miosa/vscroll/window"
)

// Model is the status bar state.
type Model struct {
	width int
	mode  string

	rng    window.VisibleRange
	offset float64

	shown, total int
	renders      int
	faults       int64
	pending      bool
	measured     bool
}

// New returns a zero-value Model.
func New() Model {
	return Model{}
}

// SetWidth sets the bar width.
func (m *Model) SetWidth(w int) { m.width = w }

// SetMode shows the app state on the left, e.g. "browsing".
func (m *Model) SetMode(mode string) { m.mode = mode }

// SetWindow records the current visible range and scroll offset.
func (m *Model) SetWindow(rng window.VisibleRange, offset float64) {
	m.rng = rng
	m.offset = offset
}

// SetCounts records how many items pass the filter out of the dataset.
func (m *Model) SetCounts(shown, total int) {
	m.shown, m.total = shown, total
}

// SetRenders records the list's row render counter and fault count.
func (m *Model) SetRenders(renders int, faults int64) {
	m.renders, m.faults = renders, faults
}

// SetPending marks whether a deferred filter is still in flight.
func (m *Model) SetPending(p bool) { m.pending = p }

// SetMeasured marks measured-row mode.
func (m *Model) SetMeasured(on bool) { m.measured = on }

// View renders "mode · rows a–b of n · height H · renders R" with key hints
// right-aligned.
func (m Model) View() string {
	var parts []string
	if m.mode != "" {
		parts = append(parts, style.StatusKey.Render(m.mode))
	}
	if m.rng.Empty() {
		parts = append(parts, style.StatusRange.Render("no rows"))
	} else {
		parts = append(parts, style.StatusRange.Render(
			fmt.Sprintf("rows %d–%d of %d", m.rng.StartIndex, m.rng.EndIndex, m.shown)))
	}
	if m.shown != m.total {
		parts = append(parts, fmt.Sprintf("filtered from %d", m.total))
	}
	parts = append(parts,
		fmt.Sprintf("offset %s/%s", formatRows(m.offset), formatRows(m.rng.TotalHeight)),
		fmt.Sprintf("renders %d", m.renders),
	)
	if m.measured {
		parts = append(parts, "measured")
	}
	if m.faults > 0 {
		parts = append(parts, style.ErrorText.Render(fmt.Sprintf("%d faults", m.faults)))
	}
	if m.pending {
		parts = append(parts, style.SearchPending.Render("filter pending"))
	}

	left := style.StatusBar.Render(strings.Join(parts, style.Faint.Render(" · ")))
	right := style.Hint.Render("? help  / search  q quit ")
	if m.width <= 0 {
		return left
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(left)
	}
	return left + strings.Repeat(" ", gap) + right
}

// formatRows returns a compact row count: 800000 → "800k", 1500 → "1.5k".
func formatRows(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	default:
		return trimZero(fmt.Sprintf("%.1f", v))
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
