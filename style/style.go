// Package style holds the color palette and lipgloss styles shared by every
// vscroll view. Styles are package vars rebuilt by SetTheme.
package style

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors start with the dark theme and are updated via SetTheme().
var (
	Primary   color.Color = darkTheme.Primary
	Secondary color.Color = darkTheme.Secondary
	Success   color.Color = darkTheme.Success
	Warning   color.Color = darkTheme.Warning
	Error     color.Color = darkTheme.Error
	Muted     color.Color = darkTheme.Muted
	Dim       color.Color = darkTheme.Dim
	Border    color.Color = darkTheme.Border

	SelectionBgColor color.Color = darkTheme.SelectionBg
	StripeBgColor    color.Color = darkTheme.StripeBg

	categoryColors = darkTheme.Categories
)

// Base styles, rebuilt by rebuildStyles() on every theme change.
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style
	Hint      lipgloss.Style

	// Header
	HeaderTitle     lipgloss.Style
	HeaderMeta      lipgloss.Style
	HeaderSeparator lipgloss.Style

	// Search
	SearchPrompt  lipgloss.Style
	SearchPending lipgloss.Style
	SearchCount   lipgloss.Style

	// List rows
	Row         lipgloss.Style
	RowStripe   lipgloss.Style
	RowSelected lipgloss.Style
	RowID       lipgloss.Style
	RowDate     lipgloss.Style
	RowFault    lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusRange lipgloss.Style
	StatusKey   lipgloss.Style

	// Scrollbar
	ScrollbarThumb lipgloss.Style
	ScrollbarTrack lipgloss.Style

	// Help overlay
	HelpBorder lipgloss.Style

	// Spinner
	SpinnerStyle lipgloss.Style
)

func init() {
	rebuildStyles()
}

// SetTheme applies a named theme, updating all color vars and rebuilding styles.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = name
	Primary = t.Primary
	Secondary = t.Secondary
	Success = t.Success
	Warning = t.Warning
	Error = t.Error
	Muted = t.Muted
	Dim = t.Dim
	Border = t.Border
	SelectionBgColor = t.SelectionBg
	StripeBgColor = t.StripeBg
	categoryColors = t.Categories
	rebuildStyles()
	return true
}

// IsDark returns whether the current theme is dark.
func IsDark() bool {
	return CurrentThemeName != "light"
}

// CategoryColor returns the accent for an item category index. Out-of-range
// indexes get the muted color.
func CategoryColor(i int) color.Color {
	if i < 0 || i >= len(categoryColors) {
		return Muted
	}
	return categoryColors[i]
}

func rebuildStyles() {
	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Hint = lipgloss.NewStyle().Foreground(Dim)

	HeaderTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	HeaderMeta = lipgloss.NewStyle().Foreground(Muted)
	HeaderSeparator = lipgloss.NewStyle().Foreground(Border)

	SearchPrompt = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	SearchPending = lipgloss.NewStyle().Foreground(Warning)
	SearchCount = lipgloss.NewStyle().Foreground(Muted)

	Row = lipgloss.NewStyle()
	RowStripe = lipgloss.NewStyle().Background(StripeBgColor)
	RowSelected = lipgloss.NewStyle().Background(SelectionBgColor).Bold(true)
	RowID = lipgloss.NewStyle().Foreground(Muted)
	RowDate = lipgloss.NewStyle().Foreground(Dim)
	RowFault = lipgloss.NewStyle().Foreground(Error).Italic(true)

	StatusBar = lipgloss.NewStyle().Foreground(Muted).PaddingLeft(1)
	StatusRange = lipgloss.NewStyle().Foreground(Secondary)
	StatusKey = lipgloss.NewStyle().Foreground(Primary)

	ScrollbarThumb = lipgloss.NewStyle().Foreground(Primary)
	ScrollbarTrack = lipgloss.NewStyle().Foreground(Dim)

	HelpBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
}
