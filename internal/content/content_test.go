package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/markdown"
)

var testNow = time.Date(2100, 1, 1, 0, 0, 0, 0, time.Local)

func writeDoc(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func testSnapshot(t *testing.T, base, yml string, mode config.Mode) config.Snapshot {
	t.Helper()
	cfg, err := config.Parse([]byte(yml), base)
	require.NoError(t, err)
	return cfg.Snapshot(mode, testNow)
}

func loadAndSetup(t *testing.T, snap config.Snapshot) *Collection {
	t.Helper()
	c, err := Load(snap)
	require.NoError(t, err)
	require.NoError(t, c.Setup(Env{Converter: markdown.New(snap.Markdown)}))
	c.Sort()
	c.LinkSiblings()
	require.NoError(t, c.IndexFileIDs())
	return c
}

func ids(items []*Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestLoadSetupAndSort(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "post/a.md", "---\ndate: 2024-03-01\n---\nfirst")
	writeDoc(t, docs, "post/b.md", "---\ndate: 2024-03-15\n---\nsecond")
	writeDoc(t, docs, "post/c.md", "---\ndate: 2024-03-15\ndraft: true\n---\ndraft")
	writeDoc(t, docs, "post/skip.jpg", "binary")
	writeDoc(t, docs, "page/z.md", "z")
	writeDoc(t, docs, "page/index.md", "root index")
	writeDoc(t, docs, "page/sub/a.md", "---\norder: 2\n---\n")
	writeDoc(t, docs, "page/sub/b.md", "---\norder: 1\n---\n")

	snap := testSnapshot(t, base, "", config.ModeBuild)
	c := loadAndSetup(t, snap)

	assert.Equal(t, []string{
		"/docs/post/b.md",
		"/docs/post/a.md",
		"/docs/page/index.md",
		"/docs/page/z.md",
		"/docs/page/sub/b.md",
		"/docs/page/sub/a.md",
	}, ids(c.Items))

	first := c.Items[0]
	assert.Nil(t, first.Prev)
	assert.Equal(t, c.Items[1], first.Next)
	assert.Equal(t, first, c.Items[1].Prev)

	item, ok := c.Get("/docs/page/z.md")
	require.True(t, ok)
	assert.Equal(t, "page/z.md", item.FileID)
	assert.Contains(t, item.Content, "<p>z</p>")
}

// declineHook never takes a document.
type declineHook struct{}

func (declineHook) OnGetContent(*Item, string) (string, bool) { return "", false }

func TestDeclinedContentHookKeepsBody(t *testing.T) {
	base := t.TempDir()
	writeDoc(t, filepath.Join(base, "docs"), "post/a.md", "---\ndate: 2024-03-01\n---\nHello *world*")
	snap := testSnapshot(t, base, "", config.ModeBuild)

	c, err := Load(snap)
	require.NoError(t, err)
	require.NoError(t, c.Setup(Env{Converter: markdown.New(snap.Markdown), Hooks: declineHook{}}))
	require.Len(t, c.Items, 1)
	assert.Contains(t, c.Items[0].Content, "<em>world</em>")
	assert.Contains(t, c.Items[0].Summary, "Hello world")
}

func TestServeAllKeepsDrafts(t *testing.T) {
	base := t.TempDir()
	writeDoc(t, filepath.Join(base, "docs"), "post/a.md", "---\ndraft: true\n---\n")
	snap := testSnapshot(t, base, "serve_all: true\n", config.ModeServe)
	c := loadAndSetup(t, snap)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].IsDraft)
}

func TestExcludeAndExtensions(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "page/keep.md", "")
	writeDoc(t, docs, "page/notes.txt", "")
	writeDoc(t, docs, "page/private/secret.md", "")
	writeDoc(t, docs, "page/README.md", "")

	snap := testSnapshot(t, base, "doc_ext: [md]\nexclude: ['page/private/*', 'README.md']\n", config.ModeBuild)
	c, err := Load(snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/page/keep.md"}, ids(c.Items))
}

func TestMalformedFrontMatterDropsItem(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "page/good.md", "ok")
	writeDoc(t, docs, "page/bad.md", "---\ntitle: [unclosed\n---\nbody")

	snap := testSnapshot(t, base, "", config.ModeBuild)
	c, err := Load(snap)
	require.NoError(t, err)
	err = c.Setup(Env{})
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryContent))
	assert.Contains(t, err.Error(), "bad.md")
	assert.Equal(t, []string{"/docs/page/good.md"}, ids(c.Items))
}

func TestDuplicateFileID(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "page/a.md", "---\nfile_id: same\n---\n")
	writeDoc(t, docs, "page/b.md", "---\nfile_id: same\n---\n")

	snap := testSnapshot(t, base, "", config.ModeBuild)
	c, err := Load(snap)
	require.NoError(t, err)
	require.NoError(t, c.Setup(Env{}))
	c.Sort()

	err = c.IndexFileIDs()
	require.Error(t, err)
	ce, ok := foundationerrors.AsClassified(err)
	require.True(t, ok)
	first, _ := ce.Context().GetString("first")
	second, _ := ce.Context().GetString("second")
	assert.True(t, strings.HasSuffix(first, "a.md"))
	assert.True(t, strings.HasSuffix(second, "b.md"))
	assert.True(t, ce.IsFatal())
}

func TestRootIndexSlugUsesPostTypeSlug(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "page/index.md", "")
	writeDoc(t, docs, "page/guide/index.md", "")
	writeDoc(t, docs, "page/indexes.md", "")

	snap := testSnapshot(t, base, "post_type:\n  page:\n    slug: Docs\n", config.ModeBuild)
	c := loadAndSetup(t, snap)

	root, _ := c.Get("/docs/page/index.md")
	assert.Equal(t, "docs", root.Slug)
	assert.True(t, root.IsIndex())

	guide, _ := c.Get("/docs/page/guide/index.md")
	assert.Equal(t, "guide", guide.Title)
	assert.Equal(t, "guide", guide.Slug)

	other, _ := c.Get("/docs/page/indexes.md")
	assert.False(t, other.IsIndex())
	assert.Equal(t, "indexes", other.Slug)
}

func TestDraftRules(t *testing.T) {
	tests := []struct {
		name     string
		meta     map[string]any
		postType string
		date     time.Time
		want     bool
	}{
		{"published", map[string]any{}, "post", testNow.Add(-time.Hour), false},
		{"explicit draft", map[string]any{"draft": true}, "post", testNow.Add(-time.Hour), true},
		{"draft string false", map[string]any{"draft": "false", "status": "draft"}, "post", testNow.Add(-time.Hour), false},
		{"explicit false beats future", map[string]any{"draft": false}, "post", testNow.Add(time.Hour), false},
		{"future", map[string]any{}, "post", testNow.Add(time.Hour), true},
		{"expired", map[string]any{"expire": "2024-01-01"}, "post", testNow.Add(-time.Hour), true},
		{"not yet expired", map[string]any{"expire": "2200-01-01"}, "post", testNow.Add(-time.Hour), false},
		{"private status", map[string]any{"status": "private"}, "post", testNow.Add(-time.Hour), true},
		{"draft post type", map[string]any{}, "draft", testNow.Add(-time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &Item{Meta: tt.meta, PostType: tt.postType, Date: tt.date, Status: "publish"}
			if s, ok := item.MetaString("status"); ok {
				item.Status = s
			}
			item.IsExpired = item.expired(testNow, discardLogger())
			item.IsFuture = item.Date.After(testNow)
			assert.Equal(t, tt.want, item.draft())
		})
	}
}

func TestDates(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "post/20230405-hello.md", "")
	writeDoc(t, docs, "post/20230405.md", "")
	writeDoc(t, docs, "post/meta.md", "---\ndate: 2022-01-02 03:04\nmodified: 2021-01-01\n---\n")
	writeDoc(t, docs, "post/broken.md", "---\ndate: someday\n---\n")

	snap := testSnapshot(t, base, "serve_all: true\n", config.ModeServe)
	c := loadAndSetup(t, snap)

	byName, _ := c.Get("/docs/post/20230405.md")
	assert.Equal(t, time.Date(2023, 4, 5, 0, 0, 0, 0, time.Local), byName.Date)

	meta, _ := c.Get("/docs/post/meta.md")
	assert.Equal(t, time.Date(2022, 1, 2, 3, 4, 0, 0, time.Local), meta.Date)
	assert.Equal(t, meta.Date, meta.Modified, "modified is clamped to date")

	broken, _ := c.Get("/docs/post/broken.md")
	assert.True(t, broken.Date.Equal(Epoch))

	// Not a pure date stem, so the file time is used.
	suffixed, _ := c.Get("/docs/post/20230405-hello.md")
	assert.NotEqual(t, 2023, suffixed.Date.Year())
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	for _, v := range []any{"2024-03-01", " 2024-03-01 ", want} {
		got, ok := ParseDate(v)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%v) = %v, %v", v, got, ok)
		}
	}
	if _, ok := ParseDate(42); ok {
		t.Errorf("ParseDate(42) should fail")
	}
}

func TestCompareIsTotal(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	items := []*Item{
		{SrcPath: "post/a.md", SrcDir: "post", Filename: "a", Date: d1, ArchiveType: config.ArchiveDate},
		{SrcPath: "post/b.md", SrcDir: "post", Filename: "b", Date: d1, ArchiveType: config.ArchiveDate},
		{SrcPath: "post/c.md", SrcDir: "post", Filename: "c", Date: d2, ArchiveType: config.ArchiveDate},
		{SrcPath: "page/index.md", SrcDir: "page", Filename: "index", PostTypeIndex: 1, ArchiveType: config.ArchiveSection},
		{SrcPath: "page/x.md", SrcDir: "page", Filename: "x", PostTypeIndex: 1, ArchiveType: config.ArchiveSection},
		{SrcPath: "page/y.md", SrcDir: "page", Filename: "y", PostTypeIndex: 1, ArchiveType: config.ArchiveSection, Meta: map[string]any{"order": 1}},
		{SrcPath: "page/a/z.md", SrcDir: "page/a", Filename: "z", PostTypeIndex: 1, ArchiveType: config.ArchiveSection},
		{SrcPath: "page/a-b/z.md", SrcDir: "page/a-b", Filename: "z", PostTypeIndex: 1, ArchiveType: config.ArchiveSection},
	}
	for _, a := range items {
		assert.Zero(t, Compare(a, a), "irreflexive for %s", a.SrcPath)
		for _, b := range items {
			if a == b {
				continue
			}
			ab, ba := Compare(a, b), Compare(b, a)
			assert.NotZero(t, ab, "%s vs %s", a.SrcPath, b.SrcPath)
			assert.Equal(t, ab < 0, ba > 0, "antisymmetric for %s, %s", a.SrcPath, b.SrcPath)
			for _, c := range items {
				if ab < 0 && Compare(b, c) < 0 {
					assert.Negative(t, Compare(a, c), "transitive %s < %s < %s", a.SrcPath, b.SrcPath, c.SrcPath)
				}
			}
		}
	}
}

func TestNegativeOrderSortsFirst(t *testing.T) {
	pinned := &Item{SrcPath: "post/z.md", SrcDir: "post", Filename: "z", ArchiveType: config.ArchiveDate,
		Meta: map[string]any{"order": -1}}
	newer := &Item{SrcPath: "post/a.md", SrcDir: "post", Filename: "a", ArchiveType: config.ArchiveDate,
		Date: testNow}
	assert.Negative(t, Compare(pinned, newer))
}

func TestComparePaths(t *testing.T) {
	assert.Negative(t, ComparePaths("a/b", "a-b"))
	assert.Negative(t, ComparePaths("a/z", "ab"))
	assert.Negative(t, ComparePaths("a", "a/b"))
	assert.Zero(t, ComparePaths("a/b", "a/b"))
}

func TestSummarize(t *testing.T) {
	got := Summarize(`<p>Hello "world"</p><script>alert(1)</script><style>p{}</style>{{ x }} and/or it's done`)
	assert.Equal(t, "Hello  world  and or it s done", got)
	assert.Equal(t, "ab", Summarize("a\nb"))

	long := Summarize("<p>" + strings.Repeat("é", 200) + "</p>")
	assert.Equal(t, SummaryLength, len([]rune(long)))
}

func TestSelect(t *testing.T) {
	mk := func(n int) *Collection {
		c := &Collection{}
		for i := 0; i < n; i++ {
			c.Items = append(c.Items, &Item{ID: string(rune('a' + i))})
		}
		return c
	}
	c := mk(6)
	c.Select(1, 0, 2)
	assert.Equal(t, []string{"b", "d", "f"}, ids(c.Items))

	c = mk(6)
	c.Select(-2, 0, 0)
	assert.Equal(t, []string{"e", "f"}, ids(c.Items))

	c = mk(3)
	c.Select(0, 10, 1)
	assert.Len(t, c.Items, 3)
}

func TestResolveURLs(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, docs, "page/about.md", "---\ntitle: About Us\n---\n")
	writeDoc(t, docs, "page/feed.md", "---\nurl: /Feed.xml\n---\n")
	writeDoc(t, docs, "post/hello.md", "---\ndate: 2024-03-01 10:20:30\n---\n")

	snap := testSnapshot(t, base, "site:\n  site_url: https://example.com/\n", config.ModeBuild)
	c := loadAndSetup(t, snap)
	require.NoError(t, c.ResolveURLs(nil))

	about, _ := c.Get("/docs/page/about.md")
	assert.Equal(t, "/page/about-us/", about.RelURL)
	assert.Equal(t, "page/about-us/index.html", about.DestPath)
	assert.Equal(t, "page/about-us", about.DestDir)
	assert.Equal(t, "https://example.com/page/about-us/", about.AbsURL)
	assert.Equal(t, about.AbsURL, about.URL)

	feed, _ := c.Get("/docs/page/feed.md")
	assert.Equal(t, "/feed.xml", feed.RelURL)
	assert.Equal(t, "feed.xml", feed.DestPath)

	hello, _ := c.Get("/docs/post/hello.md")
	assert.Equal(t, "/post/2024/03/01/102030/", hello.RelURL)
}

func TestDraftModeRendersAtRoot(t *testing.T) {
	base := t.TempDir()
	draft := filepath.Join(base, "scratch.md")
	require.NoError(t, os.WriteFile(draft, []byte("---\ndraft: true\n---\nwip"), 0o644))

	snap := testSnapshot(t, base, "", config.ModeDraft).WithDraftPath(draft)
	c := loadAndSetup(t, snap)
	require.Len(t, c.Items, 1)
	require.NoError(t, c.ResolveURLs(nil))
	assert.Equal(t, "index.html", c.Items[0].DestPath)
	assert.Equal(t, "/", c.Items[0].RelURL)
}

func TestImage(t *testing.T) {
	base := t.TempDir()
	docs := filepath.Join(base, "docs")
	writeDoc(t, base, "static/img/logo.png", "png")
	writeDoc(t, docs, "post/pic.jpg", "jpg")
	writeDoc(t, docs, "post/a.md", "---\ndate: 2024-03-01\nimage:\n  src: pic.jpg\n  alt: A\n---\n")
	writeDoc(t, docs, "post/b.md", "---\ndate: 2024-03-01\nimage:\n  src: /static/img/logo.png\n---\n")
	writeDoc(t, docs, "post/c.md", "---\ndate: 2024-03-01\nimage:\n  src: https://cdn.example.com/x.png\n---\n")
	writeDoc(t, docs, "post/d.md", "---\ndate: 2024-03-01\nimage:\n  src: missing.png\n---\n")

	snap := testSnapshot(t, base, "use_abs_url: false\n", config.ModeBuild)
	c := loadAndSetup(t, snap)

	a, _ := c.Get("/docs/post/a.md")
	require.NotNil(t, a.Image)
	assert.Equal(t, "/thumb/2024/03/pic.jpg", a.Image.URL)
	assert.Equal(t, "thumb/2024/03/pic.jpg", a.Image.NewPath)
	assert.Equal(t, "A", a.Image.Extras["alt"])

	b, _ := c.Get("/docs/post/b.md")
	require.NotNil(t, b.Image)
	assert.Equal(t, "/img/logo.png", b.Image.URL)
	assert.Empty(t, b.Image.NewPath)

	cc, _ := c.Get("/docs/post/c.md")
	assert.Equal(t, "https://cdn.example.com/x.png", cc.Image.URL)

	d, _ := c.Get("/docs/post/d.md")
	assert.Nil(t, d.Image)
}
