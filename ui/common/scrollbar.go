// Package common holds small rendering helpers shared by vscroll views.
package common

import (
	"math"
	"strings"

	"github.com/miosa/vscroll/style"
)

const (
	scrollTrackChar = "│"
	scrollThumbChar = "█"
)

// ScrollbarModel tracks the dimensions needed to render a vertical scrollbar.
// Heights are in terminal rows; contentHeight is the full virtual height of
// the list, not just the rendered part.
type ScrollbarModel struct {
	viewportHeight int
	contentHeight  float64
	offset         float64
}

// NewScrollbar creates a ScrollbarModel with the given dimensions.
func NewScrollbar(viewportHeight int, contentHeight, offset float64) ScrollbarModel {
	return ScrollbarModel{
		viewportHeight: viewportHeight,
		contentHeight:  contentHeight,
		offset:         offset,
	}
}

// SetDimensions updates the scrollbar dimensions.
func (s *ScrollbarModel) SetDimensions(viewportHeight int, contentHeight, offset float64) {
	s.viewportHeight = viewportHeight
	s.contentHeight = contentHeight
	s.offset = offset
}

// Thumb returns the first row and the height of the thumb. ok is false when
// the content fits and no thumb is drawn.
func (s ScrollbarModel) Thumb() (top, height int, ok bool) {
	vh := float64(s.viewportHeight)
	ch := s.contentHeight
	if s.viewportHeight <= 0 || ch <= vh {
		return 0, 0, false
	}

	// At least one row, even for a million-row list.
	height = int(math.Round(vh * vh / ch))
	height = max(1, min(height, s.viewportHeight))

	scrollable := ch - vh
	offset := math.Max(0, math.Min(s.offset, scrollable))
	top = int(math.Round(offset * float64(s.viewportHeight-height) / scrollable))
	top = max(0, min(top, s.viewportHeight-height))
	return top, height, true
}

// View renders a vertical scrollbar as a single column of viewportHeight
// rows. When the content fits the column is blank so the layout width stays
// stable.
func (s ScrollbarModel) View() string {
	if s.viewportHeight <= 0 {
		return ""
	}
	top, height, ok := s.Thumb()
	rows := make([]string, s.viewportHeight)
	for i := range rows {
		switch {
		case !ok:
			rows[i] = " "
		case i >= top && i < top+height:
			rows[i] = style.ScrollbarThumb.Render(scrollThumbChar)
		default:
			rows[i] = style.ScrollbarTrack.Render(scrollTrackChar)
		}
	}
	return strings.Join(rows, "\n")
}

// Scrollbar is a convenience function that builds a one-shot scrollbar string
// without creating a persistent model.
func Scrollbar(viewportHeight int, contentHeight, offset float64) string {
	m := NewScrollbar(viewportHeight, contentHeight, offset)
	return m.View()
}
