// Package help renders the key reference overlay. The text is built as
// markdown from the live key bindings and rendered through glamour.
package help

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"github.com/charmbracelet/glamour"

	"github.com/miosa/vscroll/style"
)

// Section groups related bindings under a heading.
type Section struct {
	Title    string
	Bindings []key.Binding
}

const notes = `
## Reading the status bar

- **rows a–b** is the window rendered right now, overscan included.
- **height** is the full virtual height the scrollbar is sized from.
- **renders** counts row renders; scrolling inside the same window adds none.
- The spinner next to the search box means the filter has not caught up with
  your typing yet.
`

// Model caches the rendered overlay for the current width and theme.
type Model struct {
	sections []Section
	width    int

	rendered string
	theme    string
}

// New returns a help overlay for sections.
func New(sections ...Section) Model {
	return Model{sections: sections}
}

// SetWidth re-renders the overlay when the width changes.
func (m *Model) SetWidth(w int) {
	if w == m.width && m.theme == style.CurrentThemeName {
		return
	}
	m.width = w
	m.render()
}

// Refresh re-renders after a theme change.
func (m *Model) Refresh() {
	m.render()
}

// Markdown returns the overlay source.
func (m Model) Markdown() string {
	var b strings.Builder
	b.WriteString("# vscroll\n\n")
	for _, s := range m.sections {
		fmt.Fprintf(&b, "## %s\n\n| key | action |\n|---|---|\n", s.Title)
		for _, k := range s.Bindings {
			h := k.Help()
			if h.Key == "" {
				continue
			}
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(notes)
	return b.String()
}

// View returns the rendered overlay inside a border.
func (m Model) View() string {
	if m.rendered == "" {
		return ""
	}
	return style.HelpBorder.Render(m.rendered)
}

// render falls back to the raw markdown if glamour fails.
func (m *Model) render() {
	m.theme = style.CurrentThemeName
	md := m.Markdown()
	wrap := max(20, m.width-4)

	glamourStyle := "dark"
	if !style.IsDark() {
		glamourStyle = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.rendered = md
		return
	}
	out, err := r.Render(md)
	if err != nil {
		m.rendered = md
		return
	}
	m.rendered = strings.Trim(out, "\n")
}
