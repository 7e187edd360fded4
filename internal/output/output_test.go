package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/content"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
)

type countingRecorder struct {
	metrics.NoopRecorder
	dupes int
}

func (c *countingRecorder) IncDuplicateDest() { c.dupes++ }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDestTableRejectsSecondOwner(t *testing.T) {
	rec := &countingRecorder{}
	table := NewDestTable(rec)
	require.NoError(t, table.Claim("blog/index.html", "/docs/page/a.md"))
	require.NoError(t, table.Claim("blog/index.html", "/docs/page/a.md"))

	err := table.Claim("blog/index.html", "/docs/page/b.md")
	require.Error(t, err)
	ce, ok := foundationerrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, 1, rec.dupes)
	assert.Equal(t, foundationerrors.CategoryOutput, ce.Category())
	assert.True(t, ce.IsFatal())
	first, _ := ce.Context().GetString("first")
	second, _ := ce.Context().GetString("second")
	dest, _ := ce.Context().GetString("dest_path")
	assert.Equal(t, "/docs/page/a.md", first)
	assert.Equal(t, "/docs/page/b.md", second)
	assert.Equal(t, "blog/index.html", dest)

	owner, ok := table.Owner("blog/index.html")
	assert.True(t, ok)
	assert.Equal(t, "/docs/page/a.md", owner)
	assert.Equal(t, []string{"blog/index.html"}, table.Paths())
}

func TestWriterSkipsUnchangedFiles(t *testing.T) {
	public := t.TempDir()
	w := NewWriter(public, nil, quiet())
	require.NoError(t, w.Write("a/index.html", []byte("one")))
	written, skipped, size := w.Stats()
	assert.Equal(t, 1, written)
	assert.Equal(t, 0, skipped)
	assert.EqualValues(t, 3, size)

	w2 := NewWriter(public, w.Fingerprints(), quiet())
	require.NoError(t, w2.Write("a/index.html", []byte("one")))
	require.NoError(t, w2.Write("b/index.html", []byte("two")))
	written, skipped, _ = w2.Stats()
	assert.Equal(t, 1, written)
	assert.Equal(t, 1, skipped)

	// A fingerprint match does not help when the file is gone.
	require.NoError(t, os.Remove(filepath.Join(public, "a", "index.html")))
	w3 := NewWriter(public, w2.Fingerprints(), quiet())
	require.NoError(t, w3.Write("a/index.html", []byte("one")))
	written, _, _ = w3.Stats()
	assert.Equal(t, 1, written)
	data, err := os.ReadFile(filepath.Join(public, "a", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestWriterRejectsEscapingPaths(t *testing.T) {
	w := NewWriter(t.TempDir(), nil, quiet())
	for _, dest := range []string{"../x.html", "", "a/../../x"} {
		assert.Error(t, w.Write(dest, []byte("x")), dest)
	}
}

func TestPruneStale(t *testing.T) {
	public := t.TempDir()
	w := NewWriter(public, nil, quiet())
	require.NoError(t, w.Write("old/index.html", []byte("old")))
	require.NoError(t, w.Write("keep/index.html", []byte("keep")))

	w2 := NewWriter(public, w.Fingerprints(), quiet())
	require.NoError(t, w2.Write("keep/index.html", []byte("keep")))
	removed, err := w2.PruneStale()
	require.NoError(t, err)
	assert.Equal(t, []string{"old/index.html"}, removed)
	assert.NoFileExists(t, filepath.Join(public, "old", "index.html"))
	assert.FileExists(t, filepath.Join(public, "keep", "index.html"))
}

func TestListTreeClaimsAndCopies(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "a.css"), []byte("a{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "robots.txt"), []byte("ok"), 0o644))

	root, err := ListTree(src, "")
	require.NoError(t, err)
	require.Len(t, root, 2)

	table := NewDestTable(nil)
	require.NoError(t, table.Claim("robots.txt", "extra:robots.txt"))
	err = ClaimAssets(table, root)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryOutput))

	prefixed, err := ListTree(src, "static")
	require.NoError(t, err)
	require.NoError(t, ClaimAssets(NewDestTable(nil), prefixed))

	public := t.TempDir()
	w := NewWriter(public, nil, quiet())
	require.NoError(t, w.CopyAssets(prefixed))
	assert.FileExists(t, filepath.Join(public, "static", "css", "a.css"))

	missing, err := ListTree(filepath.Join(src, "missing"), "")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestAliases(t *testing.T) {
	item := &content.Item{ID: "/docs/post/a.md", URL: "/post/a/", Aliases: []string{"/old/a/", "/legacy.html", ""}}
	aliases := Aliases(item)
	require.Len(t, aliases, 2)
	assert.Equal(t, "old/a/index.html", aliases[0].DestPath)
	assert.Equal(t, "legacy.html", aliases[1].DestPath)
	assert.Equal(t, "/post/a/", aliases[0].Target)

	page := string(AliasPage(item.URL))
	assert.Contains(t, page, `http-equiv="refresh"`)
	assert.Contains(t, page, `href="/post/a/"`)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.html"), nil, 0o644))
	require.NoError(t, Clean(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.DirExists(t, dir)
	require.NoError(t, Clean(filepath.Join(dir, "missing")))
}
