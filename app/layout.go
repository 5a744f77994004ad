package app

const (
	headerHeight = 2 // title line + separator
	searchHeight = 1
	statusHeight = 1

	// helpMaxWidth keeps the overlay readable on very wide terminals.
	helpMaxWidth = 90
)

// Layout holds computed dimensions for the current frame.
type Layout struct {
	TermWidth  int
	TermHeight int

	HeaderHeight int
	SearchHeight int
	StatusHeight int
	ToastHeight  int

	ListTop    int // first terminal row of the list pane
	ListWidth  int // scrollbar column included
	ListHeight int

	HelpWidth int
}

// ComputeLayout splits the terminal into header, search line, list pane,
// status bar and toasts. The list gets whatever is left, at least one row.
func ComputeLayout(termW, termH, toastLines int) Layout {
	l := Layout{
		TermWidth:    termW,
		TermHeight:   termH,
		HeaderHeight: headerHeight,
		SearchHeight: searchHeight,
		StatusHeight: statusHeight,
		ToastHeight:  max(0, toastLines),
		ListWidth:    max(0, termW),
		HelpWidth:    min(max(0, termW), helpMaxWidth),
	}
	l.ListTop = l.HeaderHeight + l.SearchHeight
	l.ListHeight = termH - l.ListTop - l.StatusHeight - l.ToastHeight
	if l.ListHeight < 1 {
		l.ListHeight = 1
	}
	return l
}
