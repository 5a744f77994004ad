package gitlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/vscroll/item"
)

// initRepo creates a repository with one commit per message, oldest first.
func initRepo(t *testing.T, messages ...string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	for i, msg := range messages {
		name := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(name, []byte(strings.Repeat("x", i+1)), 0o644))
		_, err := wt.Add("notes.txt")
		require.NoError(t, err)
		_, err = wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "Ada", Email: "ada@example.com", When: when.Add(time.Duration(i) * time.Hour)},
		})
		require.NoError(t, err)
	}
	return dir
}

func TestLoad_NewestFirst(t *testing.T) {
	dir := initRepo(t, "feat: add list", "docs: describe overscan\n\nlonger body", "chore: tidy")

	items, err := Load(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Contains(t, items[0].DisplayText, "chore: tidy (Ada)")
	assert.Equal(t, item.CategoryNote, items[0].Category)
	assert.Contains(t, items[1].DisplayText, "docs: describe overscan (Ada)")
	assert.NotContains(t, items[1].DisplayText, "longer body")
	assert.Equal(t, item.CategoryDocument, items[1].Category)
	assert.Equal(t, item.CategoryTask, items[2].Category)

	for i, it := range items {
		assert.Equal(t, i, it.ID)
	}
	assert.True(t, items[0].SortKey.After(items[2].SortKey))
}

func TestLoad_Limit(t *testing.T) {
	dir := initRepo(t, "one", "two", "three", "four")
	items, err := Load(context.Background(), dir, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Contains(t, items[0].DisplayText, "four")
	assert.Contains(t, items[1].DisplayText, "three")
}

func TestLoad_Subdirectory(t *testing.T) {
	dir := initRepo(t, "one")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	items, err := Load(context.Background(), sub, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLoad_EmptyRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	items, err := Load(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoad_NotARepo(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, git.ErrRepositoryNotExists)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := initRepo(t, "one", "two")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		subject string
		parents int
		want    item.Category
	}{
		{"feat: windowing", 1, item.CategoryTask},
		{"fix(vlist): clamp offset", 1, item.CategoryTask},
		{"feat!: drop v1 api", 1, item.CategoryTask},
		{"docs: readme", 1, item.CategoryDocument},
		{"release: v1.2.0", 1, item.CategoryEvent},
		{"Merge branch 'main'", 2, item.CategoryEvent},
		{"chore: bump deps", 1, item.CategoryNote},
		{"tidy up", 0, item.CategoryNote},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.subject, tt.parents))
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "first line", Subject("  first line  \n\nbody\n"))
	assert.Equal(t, "", Subject(""))
}
