// Package anim provides the small gradient spinner shown while a deferred
// search is pending.
//
// Each spinner carries a unique ID so TickMsg events from one spinner never
// advance another. Frames are pre-rendered once per color pair.
package anim

import (
	"image/color"
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/vscroll/style"
)

// ---------------------------------------------------------------------------
// Constants & package-level state
// ---------------------------------------------------------------------------

const (
	fps           = 12
	frameDuration = time.Second / fps
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var idCounter atomic.Int64

// TickMsg advances the spinner with the matching ID.
type TickMsg struct {
	ID  int64
	run int64
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model is a Braille spinner with an optional label.
type Model struct {
	id       int64
	label    string
	spinning bool
	frame    int

	// Bumped on every Start so ticks from a previous run are ignored.
	run int64

	colorA, colorB color.Color
	rendered       []string
}

// New creates a stopped spinner using the current theme colors.
func New(label string) Model {
	m := Model{
		id:    idCounter.Add(1),
		label: label,
	}
	m.SetColors(style.Primary, style.Secondary)
	return m
}

// SetColors rebuilds the frame cache for a new gradient.
func (m *Model) SetColors(a, b color.Color) {
	m.colorA, m.colorB = a, b
	n := len(frames)
	m.rendered = make([]string, n)
	for i, glyph := range frames {
		// Bounce between the two colors instead of wrapping.
		t := (math.Sin(math.Pi*float64(i)/float64(n-1)) + 1) / 2
		m.rendered[i] = lipgloss.NewStyle().Foreground(lerpColor(a, b, t)).Render(glyph)
	}
}

// Start begins the animation and returns the first tick. Calling Start on a
// running spinner is a no-op.
func (m *Model) Start() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	m.frame = 0
	m.run++
	return m.tick()
}

// Stop halts the animation. View returns "" until Start is called again.
func (m *Model) Stop() {
	m.spinning = false
}

// IsSpinning reports whether the animation is running.
func (m Model) IsSpinning() bool { return m.spinning }

// ID returns the spinner's unique ID.
func (m Model) ID() int64 { return m.id }

// Update advances one frame on a TickMsg addressed to this spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id || tick.run != m.run || !m.spinning {
		return m, nil
	}
	m.frame = (m.frame + 1) % len(frames)
	return m, m.tick()
}

// View renders the current frame followed by the label.
func (m Model) View() string {
	if !m.spinning {
		return ""
	}
	glyph := m.rendered[m.frame%len(m.rendered)]
	if m.label == "" {
		return glyph
	}
	return glyph + " " + style.SearchPending.Render(m.label)
}

func (m Model) tick() tea.Cmd {
	id, run := m.id, m.run
	return tea.Tick(frameDuration, func(time.Time) tea.Msg {
		return TickMsg{ID: id, run: run}
	})
}

func lerpColor(a, b color.Color, t float64) color.Color {
	ra, ga, ba, _ := a.RGBA()
	rb, gb, bb, _ := b.RGBA()
	return color.RGBA{
		R: uint8(float64(ra>>8)*(1-t) + float64(rb>>8)*t),
		G: uint8(float64(ga>>8)*(1-t) + float64(gb>>8)*t),
		B: uint8(float64(ba>>8)*(1-t) + float64(bb>>8)*t),
		A: 255,
	}
}
