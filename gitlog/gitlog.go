// Package gitlog turns a repository's commit history into list items, newest
// first, so the list can browse a real dataset instead of a generated one.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/miosa/vscroll/item"
)

// Load reads up to limit commits reachable from HEAD of the repository
// containing path. A repository without commits yields no items. limit <= 0
// means no limit.
func Load(ctx context.Context, path string, limit int) ([]item.Item, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo %s: %w", path, err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var items []item.Item
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(items) >= limit {
			return storer.ErrStop
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		items = append(items, fromCommit(len(items), c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk log: %w", err)
	}
	return items, nil
}

func fromCommit(id int, c *object.Commit) item.Item {
	subject := Subject(c.Message)
	return item.Item{
		ID:          id,
		DisplayText: fmt.Sprintf("%s %s (%s)", c.Hash.String()[:7], subject, c.Author.Name),
		Category:    Classify(subject, c.NumParents()),
		SortKey:     c.Author.When.UTC(),
	}
}

// Subject returns the first line of a commit message.
func Subject(message string) string {
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(subject)
}

// Classify maps a commit to a category: merges are events, then the
// conventional-commit type decides.
func Classify(subject string, parents int) item.Category {
	if parents > 1 {
		return item.CategoryEvent
	}
	kind, _, ok := strings.Cut(subject, ":")
	if !ok {
		return item.CategoryNote
	}
	kind, _, _ = strings.Cut(kind, "(") // feat(scope): ...
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(kind)), "!") {
	case "feat", "fix", "perf", "refactor", "revert":
		return item.CategoryTask
	case "docs":
		return item.CategoryDocument
	case "release":
		return item.CategoryEvent
	default:
		return item.CategoryNote
	}
}
