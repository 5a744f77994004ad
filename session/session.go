// Package session persists where the user left the list: the search query,
// scroll offset and selection, stored at <profileDir>/session.json.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const filename = "session.json"

// State is the restorable view state.
type State struct {
	Query        string  `json:"query,omitempty"`
	ScrollOffset float64 `json:"scroll_offset,omitempty"`
	Selected     int     `json:"selected,omitempty"`
}

// Load reads <profileDir>/session.json. If the file is absent or unreadable,
// the zero State is returned.
func Load(profileDir string) State {
	var st State
	data, err := os.ReadFile(filepath.Join(profileDir, filename))
	if err != nil {
		return State{}
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}
	}
	if st.ScrollOffset < 0 {
		st.ScrollOffset = 0
	}
	if st.Selected < 0 {
		st.Selected = 0
	}
	return st
}

// Save writes st to <profileDir>/session.json, creating the directory if
// needed.
func Save(profileDir string, st State) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return os.WriteFile(filepath.Join(profileDir, filename), data, 0o644)
}
