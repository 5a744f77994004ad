// Package vlist is a windowed list widget. It keeps the full item slice but
// renders only the rows inside the visible range computed by package window,
// places each one at its virtual offset inside a fixed-height frame and draws
// a scrollbar sized from the full virtual height.
//
// Key properties:
//   - Rendered rows are cached by index. Scrolling inside the same window
//     (same start and end index) renders nothing new.
//   - Rows are re-rendered when the window moves, the width changes, the
//     selection moves onto or off them, or the items are replaced.
//   - Measured mode records the real height of every rendered row in a
//     window.SizeCache, so multi-line rows scroll correctly.
//   - A panic in the row renderer is contained to that row.
package vlist

import (
	"fmt"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/miosa/vscroll/item"
	"github.com/miosa/vscroll/style"
	"github.com/miosa/vscroll/ui/boundary"
	"github.com/miosa/vscroll/ui/common"
	"github.com/miosa/vscroll/window"
)

const (
	defaultItemSize = 1
	defaultOverscan = 5
	wheelStep       = 3
	scrollbarWidth  = 1

	// Measuring can shift the window onto unmeasured rows; a few passes
	// settle it.
	maxMeasurePasses = 4
)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Renderer draws one item at the given content width.
type Renderer func(it item.Item, width int, selected bool) string

// Option is a functional option for New.
type Option func(*Model)

// WithSize sets the frame size, scrollbar column included.
func WithSize(w, h int) Option {
	return func(m *Model) { m.width, m.height = w, h }
}

// WithItemSize sets the estimated rows per item. Non-positive values are
// ignored.
func WithItemSize(size float64) Option {
	return func(m *Model) {
		if validSize(size) {
			m.itemSize = size
		}
	}
}

// WithOverscan sets how many extra items render beyond each viewport edge.
func WithOverscan(n int) Option {
	return func(m *Model) {
		if n >= 0 {
			m.overscan = n
		}
	}
}

// WithMeasured switches on real row height measurement.
func WithMeasured(on bool) Option {
	return func(m *Model) { m.measured = on }
}

// WithRenderer replaces DefaultRenderer.
func WithRenderer(r Renderer) Option {
	return func(m *Model) {
		if r != nil {
			m.render = r
		}
	}
}

// WithLogger sets the logger for window changes and render faults.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is the windowed list. The zero value is not usable; construct with
// New.
type Model struct {
	items  []item.Item
	width  int
	height int

	itemSize float64
	overscan int
	measured bool
	sizes    *window.SizeCache

	vp       window.Viewport
	rng      window.VisibleRange
	selected int

	render Renderer
	guard  *boundary.Boundary
	logger *zap.Logger

	// rows holds rendered rows of the current window keyed by item index.
	rows    map[int]string
	renders int
	err     error
}

// New constructs a Model with the supplied options.
func New(opts ...Option) Model {
	m := Model{
		itemSize: defaultItemSize,
		overscan: defaultOverscan,
		render:   DefaultRenderer,
		logger:   zap.NewNop(),
		rows:     make(map[int]string),
		rng:      window.VisibleRange{EndIndex: -1},
	}
	for _, o := range opts {
		o(&m)
	}
	m.guard = boundary.New(m.logger)
	if m.measured {
		m.resetSizes()
	}
	m.refresh()
	return m
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// SetItems replaces the item slice wholesale. Cached rows and measured sizes
// are discarded and the window is recomputed from scratch.
func (m *Model) SetItems(items []item.Item) {
	m.items = items
	m.rows = make(map[int]string)
	m.rng = window.VisibleRange{EndIndex: -1}
	m.selected = max(0, min(m.selected, len(items)-1))
	if m.measured {
		m.resetSizes()
	}
	m.refresh()
}

// SetSize updates the frame dimensions. A width change re-renders every row
// and, in measured mode, forgets measured heights.
func (m *Model) SetSize(w, h int) {
	if w != m.width {
		m.rows = make(map[int]string)
		if m.measured {
			m.resetSizes()
		}
	}
	m.width, m.height = w, h
	m.refresh()
}

// SetItemSize changes the estimated rows per item. Invalid sizes are ignored.
func (m *Model) SetItemSize(size float64) {
	if !validSize(size) || size == m.itemSize {
		return
	}
	m.itemSize = size
	if m.measured {
		m.resetSizes()
	}
	m.refresh()
}

// SetOverscan changes the overscan count. Negative values are ignored.
func (m *Model) SetOverscan(n int) {
	if n < 0 || n == m.overscan {
		return
	}
	m.overscan = n
	m.refresh()
}

// SetMeasured toggles measured mode.
func (m *Model) SetMeasured(on bool) {
	if on == m.measured {
		return
	}
	m.measured = on
	m.sizes = nil
	if on {
		m.resetSizes()
	}
	m.refresh()
}

// Invalidate forces every visible row to re-render, e.g. after a theme change.
func (m *Model) Invalidate() {
	m.rows = make(map[int]string)
	m.refresh()
}

// ---------------------------------------------------------------------------
// Scroll
// ---------------------------------------------------------------------------

// ScrollTo moves the viewport to offset, clamped to [0, MaxScroll].
func (m *Model) ScrollTo(offset float64) {
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return
	}
	m.vp.ScrollOffset = offset
	m.refresh()
}

// ScrollBy moves the viewport by delta rows.
func (m *Model) ScrollBy(delta float64) {
	m.ScrollTo(m.vp.ScrollOffset + delta)
}

// PageDown scrolls down by one full frame height.
func (m *Model) PageDown() { m.ScrollBy(float64(m.height)) }

// PageUp scrolls up by one full frame height.
func (m *Model) PageUp() { m.ScrollBy(-float64(m.height)) }

// HalfPageDown scrolls down by half the frame height.
func (m *Model) HalfPageDown() { m.ScrollBy(float64(m.height / 2)) }

// HalfPageUp scrolls up by half the frame height.
func (m *Model) HalfPageUp() { m.ScrollBy(-float64(m.height / 2)) }

// GotoTop selects the first item and scrolls to it.
func (m *Model) GotoTop() {
	m.Select(0)
}

// GotoBottom selects the last item and scrolls to it.
func (m *Model) GotoBottom() {
	m.Select(len(m.items) - 1)
}

// MoveSelection moves the cursor by delta items and keeps it visible.
func (m *Model) MoveSelection(delta int) {
	m.Select(m.selected + delta)
}

// Select moves the cursor to index i (clamped) and scrolls the least amount
// needed to show it.
func (m *Model) Select(i int) {
	if len(m.items) == 0 {
		return
	}
	i = max(0, min(i, len(m.items)-1))
	if i != m.selected {
		delete(m.rows, m.selected)
		delete(m.rows, i)
		m.selected = i
	}
	m.ensureVisible(i)
}

// SelectAtRow selects the item drawn at frame row y. Rows outside the frame
// or below the last item are ignored.
func (m *Model) SelectAtRow(y int) {
	if i := m.IndexAtRow(y); i >= 0 {
		m.Select(i)
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// VisibleRange returns the window the last refresh computed.
func (m Model) VisibleRange() window.VisibleRange { return m.rng }

// Viewport returns the current scroll state.
func (m Model) Viewport() window.Viewport { return m.vp }

// TotalHeight is the virtual height of every item, rendered or not.
func (m Model) TotalHeight() float64 {
	if m.measured && m.sizes != nil {
		return m.sizes.Total()
	}
	return float64(len(m.items)) * m.itemSize
}

// Len returns the number of items.
func (m Model) Len() int { return len(m.items) }

// Items returns the current item slice.
func (m Model) Items() []item.Item { return m.items }

// SelectedIndex returns the cursor position.
func (m Model) SelectedIndex() int { return m.selected }

// Selected returns the item under the cursor.
func (m Model) Selected() (item.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return item.Item{}, false
	}
	return m.items[m.selected], true
}

// Renders counts every row render since New. It only grows when the window
// or the row content actually changed.
func (m Model) Renders() int { return m.renders }

// Faults returns how many row renders panicked.
func (m Model) Faults() int64 { return m.guard.Faults() }

// Err returns the last windowing error, if any.
func (m Model) Err() error { return m.err }

// ItemSize returns the estimated rows per item.
func (m Model) ItemSize() float64 { return m.itemSize }

// Overscan returns the overscan count.
func (m Model) Overscan() int { return m.overscan }

// Measured reports whether measured mode is on.
func (m Model) Measured() bool { return m.measured }

// AtBottom reports whether the viewport shows the end of the list.
func (m Model) AtBottom() bool {
	return m.vp.ScrollOffset >= window.MaxScroll(m.TotalHeight(), m.vp.ContainerHeight)
}

// IndexAtRow resolves frame row y to the item drawn there, or -1.
func (m Model) IndexAtRow(y int) int {
	if y < 0 || y >= m.height {
		return -1
	}
	pos := m.vp.ScrollOffset + float64(y)
	for _, o := range m.rng.Offsets {
		if pos >= math.Floor(o.Top) && pos < math.Floor(o.Bottom()) {
			return o.Index
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Update (bubbletea)
// ---------------------------------------------------------------------------

// Update handles mouse wheel scrolling. Callers forward whichever messages
// they want the list to respond to; keys are bound by the parent.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.MouseWheelMsg); ok {
		switch msg.Button {
		case tea.MouseWheelUp:
			m.ScrollBy(-wheelStep)
		case tea.MouseWheelDown:
			m.ScrollBy(wheelStep)
		}
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View composes the cached rows of the current window into a frame of
// exactly height rows, each row at its virtual offset minus the scroll
// offset, and appends the scrollbar column.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	w := m.contentWidth()
	frame := make([]string, m.height)

	if m.err != nil {
		frame[0] = style.ErrorText.Render(truncate(m.err.Error(), w))
	} else {
		for _, o := range m.rng.Offsets {
			row, ok := m.rows[o.Index]
			if !ok {
				continue
			}
			lines := strings.Split(row, "\n")
			start := int(math.Floor(o.Top - m.vp.ScrollOffset))
			end := int(math.Floor(o.Bottom() - m.vp.ScrollOffset))
			for y := max(start, 0); y < min(end, m.height); y++ {
				if k := y - start; k < len(lines) {
					frame[y] = lines[k]
				}
			}
		}
	}

	for i, line := range frame {
		if pad := w - lipgloss.Width(line); pad > 0 {
			frame[i] = line + strings.Repeat(" ", pad)
		}
	}
	bar := common.Scrollbar(m.height, m.TotalHeight(), m.vp.ScrollOffset)
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(frame, "\n"), bar)
}

// ---------------------------------------------------------------------------
// Windowing
// ---------------------------------------------------------------------------

// refresh clamps the viewport, recomputes the window and renders whatever
// rows of it are not cached.
func (m *Model) refresh() {
	for pass := 0; ; pass++ {
		m.vp.ContainerHeight = float64(max(0, m.height))
		m.vp.ScrollOffset = window.ClampScroll(m.vp.ScrollOffset, m.TotalHeight(), m.vp.ContainerHeight)

		rng, err := m.compute()
		if err != nil {
			m.err = err
			m.logger.Error("compute visible range", zap.Error(err))
			return
		}
		m.err = nil

		if !rng.SameWindow(m.rng) {
			for i := range m.rows {
				if !rng.Contains(i) {
					delete(m.rows, i)
				}
			}
			m.logger.Debug("window changed",
				zap.Int("start", rng.StartIndex),
				zap.Int("end", rng.EndIndex),
				zap.Float64("offset", m.vp.ScrollOffset),
				zap.Float64("total", rng.TotalHeight),
			)
		}
		m.rng = rng

		changed := m.fillRows()
		if !m.measured || !changed || pass+1 >= maxMeasurePasses {
			return
		}
	}
}

func (m *Model) compute() (window.VisibleRange, error) {
	if m.measured && m.sizes != nil {
		return window.ComputeMeasuredRange(m.sizes, m.vp, m.overscan)
	}
	return window.ComputeVisibleRange(len(m.items), m.itemSize, m.vp, m.overscan)
}

// fillRows renders missing rows of the current window. In measured mode it
// reports whether any recorded height changed.
func (m *Model) fillRows() (changed bool) {
	if m.width <= 0 {
		return false
	}
	for _, o := range m.rng.Offsets {
		row, ok := m.rows[o.Index]
		if !ok {
			row = m.renderRow(o.Index)
			m.rows[o.Index] = row
		}
		if !m.measured || m.sizes == nil {
			continue
		}
		h := float64(lipgloss.Height(row))
		if m.sizes.Measured(o.Index) && m.sizes.Size(o.Index) == h {
			continue
		}
		if err := m.sizes.Set(o.Index, h); err != nil {
			m.logger.Warn("record row height", zap.Int("index", o.Index), zap.Error(err))
			continue
		}
		changed = true
	}
	return changed
}

func (m *Model) renderRow(i int) string {
	it := m.items[i]
	w := m.contentWidth()
	selected := i == m.selected
	m.renders++
	out, err := m.guard.Guard(fmt.Sprintf("row %d", it.ID), func() string {
		return m.render(it, w, selected)
	})
	if err != nil {
		return boundary.Fallback(w, err)
	}
	return lipgloss.NewStyle().MaxWidth(w).Render(out)
}

// ensureVisible scrolls the least amount that shows item i. In measured mode
// rendering can move the item, so it re-checks until the offset is stable.
func (m *Model) ensureVisible(i int) {
	for pass := 0; pass < maxMeasurePasses; pass++ {
		top, h := m.itemBounds(i)
		off := window.ScrollToItem(top, h, m.vp.ScrollOffset, float64(m.height))
		if pass > 0 && off == m.vp.ScrollOffset {
			return
		}
		m.vp.ScrollOffset = off
		m.refresh()
	}
}

func (m Model) itemBounds(i int) (top, height float64) {
	if m.measured && m.sizes != nil {
		return m.sizes.Offset(i), m.sizes.Size(i)
	}
	return float64(i) * m.itemSize, m.itemSize
}

func (m *Model) resetSizes() {
	sizes, err := window.NewSizeCache(len(m.items), m.itemSize)
	if err != nil {
		m.err = err
		return
	}
	m.sizes = sizes
}

func (m Model) contentWidth() int {
	return max(0, m.width-scrollbarWidth)
}

func validSize(size float64) bool {
	return size > 0 && !math.IsInf(size, 0)
}

func truncate(s string, w int) string {
	return lipgloss.NewStyle().MaxWidth(w).Render(s)
}
