package item

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// source adapts an item slice to fuzzy.Source.
type source []Item

func (s source) String(i int) string { return s[i].FilterValue() }
func (s source) Len() int            { return len(s) }

// Filter returns the items fuzzy-matching query, best match first. An empty
// or blank query returns items unchanged.
func Filter(items []Item, query string) []Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	matches := fuzzy.FindFrom(query, source(items))
	out := make([]Item, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out
}
