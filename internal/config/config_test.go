package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
)

func parse(t *testing.T, doc string) *Config {
	t.Helper()
	cfg, err := Parse([]byte(doc), t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg := parse(t, "")

	assert.Equal(t, "Site Title", cfg.Site.SiteName)
	assert.Equal(t, []string{"post", "page"}, cfg.PostTypes.Names())
	post, ok := cfg.PostTypes.Get("post")
	require.True(t, ok)
	assert.Equal(t, "/%Y/%m/%d/%H%M%S/", post.Permalink)
	assert.Equal(t, ArchiveDate, post.ArchiveType)
	assert.True(t, post.AddPrefixToURL)
	assert.Equal(t, "post", post.Slug)
	assert.Contains(t, cfg.DocExt, "md")
	assert.True(t, cfg.UseAbsURL)
	assert.Equal(t, "docs", cfg.Directory.Docs)
	assert.Equal(t, 8000, cfg.Serve.Port)
	assert.Empty(t, cfg.Taxonomies)
}

func TestParsePostTypeForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"mapping", `
post_type:
  post:
    permalink: /%Y/%m/%d/
  sample:
    archive_type: none
`},
		{"list", `
post_type:
  - post:
      permalink: /%Y/%m/%d/
  - sample:
      archive_type: none
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parse(t, tt.doc)
			assert.Equal(t, []string{"post", "sample"}, cfg.PostTypes.Names())

			post, _ := cfg.PostTypes.Get("post")
			assert.Equal(t, "/%Y/%m/%d/", post.Permalink)
			assert.Equal(t, ArchiveDate, post.ArchiveType)

			sample, _ := cfg.PostTypes.Get("sample")
			assert.Equal(t, ArchiveNone, sample.ArchiveType)
			assert.Equal(t, "/{slug}/", sample.Permalink)
			assert.Equal(t, "sample", sample.Slug)
			assert.Equal(t, DefaultPaginatorPath, sample.Path)
		})
	}
}

func TestParseBarePostTypeName(t *testing.T) {
	cfg := parse(t, "post_type:\n  - page\n  - post\n")
	assert.Equal(t, []string{"page", "post"}, cfg.PostTypes.Names())
	assert.Equal(t, 1, cfg.PostTypes.Index("post"))
	assert.Equal(t, -1, cfg.PostTypes.Index("missing"))
}

func TestArchiveTypeNormalization(t *testing.T) {
	cfg := parse(t, `
post_type:
  - news:
      archive_type: DATE
  - docs:
      archive_type: tree
  - notes:
      archive_type: Simple
`)
	news, _ := cfg.PostTypes.Get("news")
	docs, _ := cfg.PostTypes.Get("docs")
	notes, _ := cfg.PostTypes.Get("notes")
	assert.Equal(t, ArchiveDate, news.ArchiveType)
	assert.Equal(t, ArchiveSection, docs.ArchiveType)
	assert.Equal(t, ArchiveSimple, notes.ArchiveType)
	assert.Len(t, cfg.Warnings, 3)
}

func TestParseTaxonomyForms(t *testing.T) {
	cfg := parse(t, `
post_type: [post]
taxonomy:
  - tag:
    - tag1
    - tag 2:
        slug: tag2
  - category:
      slug: cat
      limit: 5
      flat_url: true
      terms:
        cat1:
        cat11:
          parent: cat1
`)
	require.Len(t, cfg.Taxonomies, 2)

	tag, ok := cfg.Taxonomies.Get("tag")
	require.True(t, ok)
	assert.Equal(t, "tag", tag.Slug)
	assert.Equal(t, DefaultTaxonomyLimit, tag.Limit)
	assert.True(t, tag.AddPrefixToURL)
	require.Len(t, tag.Terms, 2)
	assert.Equal(t, Term{Name: "tag1"}, tag.Terms[0])
	assert.Equal(t, Term{Name: "tag 2", Slug: "tag2"}, tag.Terms[1])

	cat, _ := cfg.Taxonomies.Get("category")
	assert.Equal(t, "cat", cat.Slug)
	assert.Equal(t, 5, cat.Limit)
	assert.True(t, cat.FlatURL)
	child, ok := cat.Terms.Get("cat11")
	require.True(t, ok)
	assert.Equal(t, "cat1", child.Parent)
}

func TestHyphenatedFlatURL(t *testing.T) {
	cfg := parse(t, `
post_type:
  - sample:
      archive_type: section
      flat-url: true
      icon: box
taxonomy:
  tag:
    flat-url: true
    terms: [go]
`)
	sample, ok := cfg.PostTypes.Get("sample")
	require.True(t, ok)
	assert.True(t, sample.FlatURL)
	assert.NotContains(t, sample.Extras, "flat-url")
	assert.Equal(t, "box", sample.Extras["icon"])

	tag, ok := cfg.Taxonomies.Get("tag")
	require.True(t, ok)
	assert.True(t, tag.FlatURL)
	assert.NotContains(t, tag.Extras, "flat-url")

	_, err := Parse([]byte("post_type:\n  - post:\n      flat-url: sometimes\n"), t.TempDir())
	require.Error(t, err)
}

func TestExtrasArePreserved(t *testing.T) {
	cfg := parse(t, `
analytics_id: UA-1
post_type:
  - post:
      icon: pen
site:
  twitter: "@me"
`)
	assert.Equal(t, "UA-1", cfg.Extras["analytics_id"])
	post, _ := cfg.PostTypes.Get("post")
	assert.Equal(t, "pen", post.Extras["icon"])
	assert.Equal(t, "@me", cfg.Site.Extras["twitter"])
}

func TestSiteURLCanonicalization(t *testing.T) {
	cfg := parse(t, `
site:
  site_url: https://example.com/
  site_image: https://example.com/static/logo.png
`)
	assert.Equal(t, "https://example.com", cfg.Site.SiteURL)
	assert.Equal(t, "/static/logo.png", cfg.Site.SiteImage)
}

func TestPluginsAndTheme(t *testing.T) {
	cfg := parse(t, `
theme: simple
plugins:
  - autop
  - select-pages:
      start: 2
      step: 3
`)
	assert.Equal(t, "simple", cfg.Theme.Name)
	require.Len(t, cfg.Plugins, 2)
	assert.Equal(t, "autop", cfg.Plugins[0].Name)
	assert.Equal(t, 3, cfg.Plugins[1].Options["step"])

	cfg = parse(t, "theme:\n  name: base\n  child: mine\n")
	assert.Equal(t, ThemeConfig{Name: "base", Child: "mine"}, cfg.Theme)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"taxonomy collides with post type", "post_type: [post]\ntaxonomy:\n  post: [a]\n"},
		{"negative limit", "post_type:\n  post:\n    limit: -1\n"},
		{"port out of range", "serve:\n  port: 70000\n"},
		{"slash in post type", "post_type:\n  - a/b\n"},
		{"duplicate term", "taxonomy:\n  tag: [a, a]\n"},
		{"bad rebuild interval", "serve:\n  rebuild_interval: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), t.TempDir())
			require.Error(t, err)
			assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig), "got %v", err)
		})
	}
}

func TestLoadExpandsEnvAndReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SITEFORGE_TEST_KEEP", "outer")
	t.Cleanup(func() { _ = os.Unsetenv("SITEFORGE_TEST_NAME") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SITEFORGE_TEST_NAME=from-dotenv\nSITEFORGE_TEST_KEEP=inner\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile),
		[]byte("site:\n  site_name: ${SITEFORGE_TEST_NAME}\n  site_desc: $SITEFORGE_TEST_KEEP\n"), 0o600))

	cfg, err := Load(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Site.SiteName)
	assert.Equal(t, "outer", cfg.Site.SiteDesc)
	assert.Equal(t, dir, cfg.BaseDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestSnapshotIsIsolated(t *testing.T) {
	cfg := parse(t, "directory:\n  public: out\ntaxonomy:\n  tag: [a]\n")
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := cfg.Snapshot(ModeBuild, now)

	assert.Equal(t, filepath.Join(cfg.BaseDir, "out"), snap.Dirs.Public)
	assert.Equal(t, filepath.Join(cfg.BaseDir, "docs"), snap.Dirs.Docs)
	assert.Equal(t, ModeBuild, snap.Mode)
	assert.Equal(t, now, snap.Now)

	snap.PostTypes[0].Slug = "changed"
	snap.Taxonomies[0].Terms[0].Slug = "changed"
	post, _ := cfg.PostTypes.Get("post")
	assert.Equal(t, "post", post.Slug)
	assert.Empty(t, cfg.Taxonomies[0].Terms[0].Slug)

	draft := snap.WithDraftPath("/tmp/x.md")
	assert.Empty(t, snap.DraftPath)
	assert.Equal(t, "/tmp/x.md", draft.DraftPath)
}

func TestHashTracksContent(t *testing.T) {
	dir := t.TempDir()
	a, err := Parse([]byte("site:\n  site_name: A\n"), dir)
	require.NoError(t, err)
	b, err := Parse([]byte("site:\n  site_name: A\n"), dir)
	require.NoError(t, err)
	c, err := Parse([]byte("site:\n  site_name: C\n"), dir)
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestInitWritesLoadableProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, Init(dir, false))

	assert.FileExists(t, filepath.Join(dir, "docs", "post", "sample.md"))
	assert.DirExists(t, filepath.Join(dir, "docs", "page"))
	assert.DirExists(t, filepath.Join(dir, "themes", "default"))

	cfg, err := Load(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	tag, ok := cfg.Taxonomies.Get("tag")
	require.True(t, ok)
	term, ok := tag.Terms.Get("tag 2")
	require.True(t, ok)
	assert.Equal(t, "tag2", term.Slug)
	cat, _ := cfg.Taxonomies.Get("category")
	cat11, _ := cat.Terms.Get("cat11")
	assert.Equal(t, "cat1", cat11.Parent)

	require.Error(t, Init(dir, false))
	require.NoError(t, Init(dir, true))
}
