package vlist

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/miosa/vscroll/item"
	"github.com/miosa/vscroll/style"
)

const (
	categoryWidth = 10
	dateWidth     = 11
)

// DefaultRenderer draws a category tag, the display text and the date. Text
// wraps when the row is narrow, which makes the row taller; fixed-size lists
// clip the extra lines, measured lists grow the row.
func DefaultRenderer(it item.Item, width int, selected bool) string {
	textWidth := width - categoryWidth - dateWidth
	if textWidth < 8 {
		// Too narrow for columns: text only.
		return rowStyle(selected, width).Render(it.DisplayText)
	}

	cat := lipgloss.NewStyle().
		Width(categoryWidth).
		Foreground(style.CategoryColor(int(it.Category))).
		Render(fmt.Sprintf("● %s", it.Category))
	text := lipgloss.NewStyle().Width(textWidth).Render(it.DisplayText)
	date := style.RowDate.Width(dateWidth).Align(lipgloss.Right).Render(it.SortKey.Format("2006-01-02"))

	return rowStyle(selected, width).Render(lipgloss.JoinHorizontal(lipgloss.Top, cat, text, date))
}

func rowStyle(selected bool, width int) lipgloss.Style {
	if selected {
		return style.RowSelected.Width(width)
	}
	return style.Row.Width(width)
}
