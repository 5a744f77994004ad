// Package item defines the records shown in the list and a deterministic
// generator for large synthetic datasets.
package item

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Category classifies an item.
type Category int

const (
	CategoryTask Category = iota
	CategoryNote
	CategoryEvent
	CategoryContact
	CategoryDocument
	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryTask:
		return "task"
	case CategoryNote:
		return "note"
	case CategoryEvent:
		return "event"
	case CategoryContact:
		return "contact"
	case CategoryDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Item is one immutable record. Items are created once and never mutated.
type Item struct {
	ID          int
	DisplayText string
	Category    Category
	SortKey     time.Time
}

// FilterValue is the text matched by Filter.
func (it Item) FilterValue() string {
	return it.DisplayText + " " + it.Category.String()
}

// Epoch anchors generated sort keys so datasets are reproducible.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	verbs = []string{
		"review", "draft", "schedule", "archive", "sync", "plan",
		"call", "file", "triage", "ship", "audit", "tag",
	}
	subjects = []string{
		"quarterly budget", "release notes", "team offsite", "vendor contract",
		"on-call rota", "design doc", "customer feedback", "invoice batch",
		"security review", "roadmap", "hiring loop", "backup policy",
		"onboarding guide", "incident report", "press kit", "sprint goals",
	}
)

// Generate returns n items with IDs 0..n-1. The same (n, seed) pair always
// produces the same dataset. Sort keys descend from Epoch, roughly one per
// hour with jitter.
func Generate(n int, seed uint64) []Item {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	items := make([]Item, n)
	for i := range items {
		verb := verbs[rng.IntN(len(verbs))]
		subject := subjects[rng.IntN(len(subjects))]
		jitter := time.Duration(rng.IntN(60)) * time.Minute
		items[i] = Item{
			ID:          i,
			DisplayText: fmt.Sprintf("#%05d %s %s", i, verb, subject),
			Category:    Category(rng.IntN(int(numCategories))),
			SortKey:     Epoch.Add(-time.Duration(i)*time.Hour - jitter),
		}
	}
	return items
}
