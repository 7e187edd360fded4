package theme

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func testSnapshot(dir, name, child string) config.Snapshot {
	return config.Snapshot{
		Site:  config.SiteConfig{SiteName: "Test", SiteURL: "https://example.com", Language: "en"},
		Dirs:  config.Dirs{Base: dir, Themes: filepath.Join(dir, "themes")},
		Theme: config.ThemeConfig{Name: name, Child: child},
	}
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChildOverridesParent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes/base/main.html"), "base main")
	writeFile(t, filepath.Join(dir, "themes/base/post.html"), "base post")
	writeFile(t, filepath.Join(dir, "themes/mine/post.html"), "child post {{ .Title }}")

	th, err := Load(testSnapshot(dir, "base", "mine"), quiet())
	require.NoError(t, err)
	require.Len(t, th.Dirs, 2)

	name := th.Lookup([]string{"missing.html", "post.html"})
	assert.Equal(t, "post.html", name)
	out, err := th.Render(name, Data{Title: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "child post Hello", string(out))

	assert.Equal(t, MainTemplate, th.Lookup([]string{"none.html"}))
	out, err = th.Render(MainTemplate, Data{})
	require.NoError(t, err)
	assert.Equal(t, "base main", string(out))
}

func TestMissingThemeFallsBack(t *testing.T) {
	dir := t.TempDir()
	th, err := Load(testSnapshot(dir, "nope", ""), quiet())
	require.NoError(t, err)
	assert.Empty(t, th.Dirs)
	assert.Contains(t, th.Warnings, "theme directory not found")

	item := &content.Item{Title: "Doc", Content: "<p>body</p>", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	out, err := th.Render(MainTemplate, Data{Site: config.SiteConfig{SiteName: "S", Language: "en"}, Home: "/", Title: item.Title, Single: item})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<p>body</p>")
	assert.Contains(t, string(out), "2024-03-01")
}

func TestTextTemplatesForFeeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes/base/feed.xml"), `<title>{{ .Title }}</title><u>{{ absURL "/a/" }}</u>`)

	th, err := Load(testSnapshot(dir, "base", ""), quiet())
	require.NoError(t, err)
	assert.True(t, th.Exists("feed.xml"))
	out, err := th.Render("feed.xml", Data{Title: "a & b"})
	require.NoError(t, err)
	// text/template does not escape.
	assert.Equal(t, "<title>a & b</title><u>https://example.com/a/</u>", string(out))
}

func TestThemeConfigMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes/base/theme.yml"), "color: blue\nmenu: [home]\n")
	writeFile(t, filepath.Join(dir, "themes/mine/theme.yml"), "color: red\n")

	th, err := Load(testSnapshot(dir, "base", "mine"), quiet())
	require.NoError(t, err)
	assert.Equal(t, "red", th.Config["color"])
	assert.Equal(t, []any{"home"}, th.Config["menu"])
}

func TestRenderErrorNamesTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes/base/bad.html"), "{{ .Nope.Field }}")

	th, err := Load(testSnapshot(dir, "base", ""), quiet())
	require.NoError(t, err)
	_, err = th.Render("bad.html", Data{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.html")
}

func TestAssetsAndPrefixLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes/base/css/site.css"), "body{}")
	writeFile(t, filepath.Join(dir, "themes/mine/css/site.css"), "child{}")
	writeFile(t, filepath.Join(dir, "themes/base/js/app.js"), "")
	writeFile(t, filepath.Join(dir, "themes/base/notes.md"), "")
	writeFile(t, filepath.Join(dir, "themes/base/new_post.md"), "---\ntitle: x\n---\n")

	th, err := Load(testSnapshot(dir, "base", "mine"), quiet())
	require.NoError(t, err)
	assets, err := th.Assets()
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, filepath.Join(dir, "themes/mine/css/site.css"), assets[0].Src)
	assert.Equal(t, "themes/base/css/site.css", assets[0].Dest)
	assert.Equal(t, "themes/base/js/app.js", assets[1].Dest)

	p, ok := th.FindPrefix("new_post.")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "themes/base/new_post.md"), p)
}
