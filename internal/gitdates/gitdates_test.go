package gitdates

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commit(t *testing.T, wt *git.Worktree, dir, name, body string, when time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
}

func TestLastModified(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	first := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	second := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	commit(t, wt, dir, "docs/post/a.md", "a", first)
	commit(t, wt, dir, "docs/post/b.md", "b", second)

	dates, err := Open(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	when, ok := dates.LastModified(filepath.Join(dir, "docs/post/a.md"))
	require.True(t, ok)
	assert.True(t, first.Equal(when), "got %s", when)

	when, ok = dates.LastModified(filepath.Join(dir, "docs/post/b.md"))
	require.True(t, ok)
	assert.True(t, second.Equal(when), "got %s", when)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs/post/new.md"), []byte("x"), 0o644))
	_, ok = dates.LastModified(filepath.Join(dir, "docs/post/new.md"))
	assert.False(t, ok)

	_, ok = dates.LastModified(filepath.Join(t.TempDir(), "elsewhere.md"))
	assert.False(t, ok)
}

func TestOpenOutsideRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}
