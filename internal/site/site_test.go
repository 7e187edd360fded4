package site

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/theme"
)

const baseConfig = `site:
  site_name: Test
  site_url: https://example.com
post_type:
  - post:
      permalink: /%Y/%m/%d/%H%M%S/
      archive_type: date
  - page:
      permalink: /{slug}/
      archive_type: section
plugins: []
use_abs_url: false
`

var fixedNow = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// newProject writes a project with one post and one page and returns its
// configuration and directory.
func newProject(t *testing.T, yml string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "siteforge.yml", yml)
	writeFile(t, dir, "docs/post/20240102-hello.md", "---\ntitle: Hello\ndate: 2024-01-02 10:20:30\n---\nHello *world*\n")
	writeFile(t, dir, "docs/page/about.md", "---\ntitle: About\ndate: 2024-01-05\n---\nAbout us\n")
	cfg, err := config.Parse([]byte(yml), dir)
	require.NoError(t, err)
	return cfg, dir
}

func newGenerator(cfg *config.Config) *Generator {
	return New(cfg, WithLogger(quiet()), WithClock(func() time.Time { return fixedNow }))
}

func TestBuildWritesSite(t *testing.T) {
	cfg, dir := newProject(t, baseConfig)
	writeFile(t, dir, "static/robots.txt", "User-agent: *\n")

	report, err := newGenerator(cfg).Build(context.Background(), BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.NotEqual(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, 2, report.Singles)
	assert.NotEmpty(t, report.BuildID)

	post := readFile(t, dir, "public/2024/01/02/102030/index.html")
	assert.Contains(t, post, "<h1>Hello</h1>")
	assert.Contains(t, post, "<em>world</em>")
	assert.Contains(t, readFile(t, dir, "public/page/about/index.html"), "About us")

	// Without a home template the first post type's archive is the site root.
	root := readFile(t, dir, "public/index.html")
	assert.Contains(t, root, `href="/2024/01/02/102030/"`)
	assert.FileExists(t, filepath.Join(dir, "public", "page", "index.html"))
	assert.Equal(t, "User-agent: *\n", readFile(t, dir, "public/robots.txt"))

	assert.FileExists(t, filepath.Join(dir, "cache", "build.db"))
	var persisted map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, dir, "cache/"+ReportJSON)), &persisted))
	assert.Equal(t, report.BuildID, persisted["build_id"])
}

func TestBuildSkipsUnchangedAndPrunesStale(t *testing.T) {
	cfg, dir := newProject(t, baseConfig)
	gen := newGenerator(cfg)
	ctx := context.Background()

	first, err := gen.Build(ctx, BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	require.Positive(t, first.FilesWritten)
	before := readFile(t, dir, "public/2024/01/02/102030/index.html")

	second, err := gen.Build(ctx, BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	assert.Zero(t, second.FilesWritten)
	assert.Equal(t, first.FilesWritten, second.FilesSkipped)
	assert.Equal(t, before, readFile(t, dir, "public/2024/01/02/102030/index.html"))
	assert.NotEqual(t, first.BuildID, second.BuildID)

	require.NoError(t, os.Remove(filepath.Join(dir, "docs", "page", "about.md")))
	third, err := gen.Build(ctx, BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, third.FilesRemoved, 1)
	assert.NoFileExists(t, filepath.Join(dir, "public", "page", "about", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "public", "2024", "01", "02", "102030", "index.html"))
}

func TestBuildCleanRewritesEverything(t *testing.T) {
	cfg, dir := newProject(t, baseConfig)
	gen := newGenerator(cfg)
	ctx := context.Background()

	_, err := gen.Build(ctx, BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	writeFile(t, dir, "public/leftover.txt", "x")

	report, err := gen.Build(ctx, BuildOptions{Mode: config.ModeBuild, Clean: true})
	require.NoError(t, err)
	assert.Zero(t, report.FilesSkipped)
	assert.NoFileExists(t, filepath.Join(dir, "public", "leftover.txt"))
	assert.FileExists(t, filepath.Join(dir, "public", "index.html"))
}

func TestDuplicateDestinationIsFatal(t *testing.T) {
	cfg, dir := newProject(t, baseConfig)
	a := writeFile(t, dir, "docs/post/a.md", "---\ntitle: A\ndate: 2024-02-01\nurl: /same/\n---\nA\n")
	b := writeFile(t, dir, "docs/post/b.md", "---\ntitle: B\ndate: 2024-02-02\nurl: /same/\n---\nB\n")

	report, err := newGenerator(cfg).Build(context.Background(), BuildOptions{Mode: config.ModeBuild})
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, ResultFatal, report.StageErrorKinds[StageURLs])

	ce, ok := foundationerrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, foundationerrors.CategoryOutput, ce.Category())
	first, _ := ce.Context().GetString("first")
	second, _ := ce.Context().GetString("second")
	assert.ElementsMatch(t, []string{a, b}, []string{first, second})
	dest, _ := ce.Context().GetString("dest_path")
	assert.Equal(t, "same/index.html", dest)

	assert.NoDirExists(t, filepath.Join(dir, "public"))
}

func TestMalformedFrontMatterIsWarning(t *testing.T) {
	cfg, dir := newProject(t, baseConfig)
	writeFile(t, dir, "docs/post/broken.md", "---\ntitle: [unclosed\n---\nbody\n")

	report, err := newGenerator(cfg).Build(context.Background(), BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, ResultWarning, report.StageErrorKinds[StageSetup])
	assert.Equal(t, 2, report.Singles)
	assert.FileExists(t, filepath.Join(dir, "public", "page", "about", "index.html"))
}

func TestThemeTemplatesAndHomePage(t *testing.T) {
	cfg, dir := newProject(t, baseConfig+"theme: simple\n")
	writeFile(t, dir, "themes/simple/single.html", "SINGLE {{ .Single.Title }}")
	writeFile(t, dir, "themes/simple/draft.html", "DRAFT {{ .Single.Title }}")
	writeFile(t, dir, "themes/simple/home.html", "HOME {{ .Site.SiteName }}")
	writeFile(t, dir, "themes/simple/css/site.css", "body{}")

	report, err := newGenerator(cfg).Build(context.Background(), BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	assert.Empty(t, report.Errors)

	// A home template keeps the URL prefix of the first post type.
	assert.Equal(t, "HOME Test", readFile(t, dir, "public/index.html"))
	assert.Equal(t, "SINGLE Hello", readFile(t, dir, "public/post/2024/01/02/102030/index.html"))
	assert.FileExists(t, filepath.Join(dir, "public", "post", "index.html"))
	assert.Equal(t, "body{}", readFile(t, dir, "public/themes/simple/css/site.css"))
	assert.Equal(t, 1, report.Pages["extra"])
}

func TestDraftModeRendersSingleDocumentAtRoot(t *testing.T) {
	cfg, dir := newProject(t, baseConfig+"theme: simple\n")
	writeFile(t, dir, "themes/simple/draft.html", "DRAFT {{ .Single.Title }}")
	writeFile(t, dir, "themes/simple/home.html", "HOME")
	draft := writeFile(t, dir, "docs/post/wip.md", "---\ntitle: Work in progress\ndraft: true\n---\nsoon\n")

	report, err := newGenerator(cfg).Build(context.Background(), BuildOptions{Mode: config.ModeDraft, DraftPath: draft})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Singles)
	assert.Zero(t, report.ArchiveNodes)
	assert.Equal(t, "DRAFT Work in progress", readFile(t, dir, "public/index.html"))
	assert.NoDirExists(t, filepath.Join(dir, "public", "2024"))
	assert.NoFileExists(t, filepath.Join(dir, "cache", ReportJSON))
}

func TestAliasesProduceRedirects(t *testing.T) {
	cfg, dir := newProject(t, baseConfig)
	writeFile(t, dir, "docs/page/contact.md", "---\ntitle: Contact\ndate: 2024-01-06\naliases: [/old-contact/]\n---\nMail us\n")

	_, err := newGenerator(cfg).Build(context.Background(), BuildOptions{Mode: config.ModeBuild})
	require.NoError(t, err)
	redirect := readFile(t, dir, "public/old-contact/index.html")
	assert.Contains(t, redirect, "/page/contact/")
}

func TestResolvePostTypes(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"post", "notes", ".git"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}
	declared := config.PostTypes{
		{Name: "post", ArchiveType: config.ArchiveNone, AddPrefixToURL: true},
		{Name: "page", ArchiveType: config.ArchiveSection, AddPrefixToURL: true},
	}
	snap := config.Snapshot{Dirs: config.Dirs{Docs: dir}, PostTypes: declared}

	pts := ResolvePostTypes(snap, false, quiet())
	require.Equal(t, []string{"post", "notes"}, pts.Names())
	assert.False(t, pts[0].AddPrefixToURL)
	assert.Equal(t, config.ArchiveSection, pts[0].ArchiveType)
	assert.True(t, pts[1].AddPrefixToURL)
	assert.Equal(t, "/{slug}/", pts[1].Permalink)
	assert.True(t, declared[0].AddPrefixToURL, "declared post types are not modified")

	withHome := ResolvePostTypes(snap, true, quiet())
	assert.True(t, withHome[0].AddPrefixToURL)
	assert.Equal(t, config.ArchiveNone, withHome[0].ArchiveType)
}

func TestNewDocumentFromTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "themes/simple/new_post.md",
		"---\ntitle: {path}\nfile: post/%Y%m%d-{path}.md\n# keep %Y\ndate: %Y-%m-%d %H:%M:%S\n---\nBody %Y\n")
	cfg, err := config.Parse([]byte("theme: simple\n"), dir)
	require.NoError(t, err)
	snap := cfg.Snapshot(config.ModeBuild, fixedNow)
	themes := loadThemes(t, snap)
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	p, err := NewDocument(snap, themes, "post", "hello", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docs", "post", "20240304-hello.md"), p)
	assert.Equal(t, "---\ntitle: hello\n# keep %Y\ndate: 2024-03-04 05:06:07\n---\nBody %Y\n", readFile(t, dir, "docs/post/20240304-hello.md"))

	_, err = NewDocument(snap, themes, "post", "hello", now)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))

	p, err = NewDocument(snap, themes, "page", "", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docs", "page", "20240304-050607.md"), p)
	assert.Contains(t, readFile(t, dir, "docs/page/20240304-050607.md"), "date: 2024-03-04 05:06:07")
}

func TestCleanTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "public/index.html", "x")
	writeFile(t, dir, "cache/build.db", "x")
	cfg, err := config.Parse([]byte("site:\n  site_name: x\n"), dir)
	require.NoError(t, err)
	snap := cfg.Snapshot(config.ModeBuild, fixedNow)

	dirs, err := Clean(snap, CleanPublic)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "public")}, dirs)
	assert.NoFileExists(t, filepath.Join(dir, "public", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "cache", "build.db"))

	_, err = Clean(snap, CleanAll)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "cache", "build.db"))
	assert.DirExists(t, filepath.Join(dir, "cache"))

	_, err = Clean(snap, "everything")
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
}

func loadThemes(t *testing.T, snap config.Snapshot) *theme.Themes {
	t.Helper()
	themes, err := theme.Load(snap, quiet())
	require.NoError(t, err)
	return themes
}
