package app

// State represents the current application state.
type State int

const (
	StateBrowsing  State = iota // Keys drive the list
	StateSearching              // Keys go to the search box
	StateHelp                   // Help overlay is open
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateSearching:
		return "searching"
	case StateHelp:
		return "help"
	default:
		return "unknown"
	}
}
