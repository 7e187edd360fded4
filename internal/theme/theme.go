// Package theme locates theme templates and renders them.
//
// A theme is a directory below the themes directory. A configured child theme
// is searched before its parent, so it can override single templates. A
// theme may carry a theme.yml whose values are exposed to templates; the
// child's values override the parent's.
package theme

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"dario.cat/mergo"
	"github.com/ncruces/go-strftime"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// MainTemplate is the last candidate of every lookup chain.
const MainTemplate = "main.html"

// ConfigFile is the optional per-theme settings file.
const ConfigFile = "theme.yml"

// AssetExtensions are the theme files copied to the public directory.
var AssetExtensions = []string{"css", "js", "gif", "png", "jpg", "svg", "ico", "woff2"}

//go:embed fallback/main.html
var fallbackFS embed.FS

// Themes is the template set of one build. Create a new one per build; its
// lookup cache is never invalidated.
type Themes struct {
	// Dirs lists theme directories, child first.
	Dirs []string
	// Name is the parent theme name used for asset paths.
	Name string
	// Config is the merged theme.yml content.
	Config map[string]any

	html *htmltemplate.Template
	text *texttemplate.Template
	// names holds every template name known to the set.
	names map[string]bool

	mu     sync.Mutex
	lookup map[string]string

	logger   *slog.Logger
	Warnings []string
}

// Load builds the template set for snap. A missing theme or child theme is a
// warning; rendering then falls back to the built-in main.html.
func Load(snap config.Snapshot, logger *slog.Logger) (*Themes, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Themes{
		Name:   snap.Theme.Name,
		Config: map[string]any{},
		names:  map[string]bool{},
		lookup: map[string]string{},
		logger: logger,
	}
	for _, name := range []string{snap.Theme.Child, snap.Theme.Name} {
		if name == "" {
			continue
		}
		dir := filepath.Join(snap.Dirs.Themes, name)
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.warn("theme directory not found", slog.String("theme", name), logfields.Path(dir))
			continue
		}
		t.Dirs = append(t.Dirs, dir)
	}

	if err := t.loadConfig(); err != nil {
		return nil, err
	}
	if err := t.parse(snap); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Themes) warn(msg string, attrs ...any) {
	t.logger.Warn(msg, attrs...)
	t.Warnings = append(t.Warnings, msg)
}

// loadConfig merges theme.yml files, parent first so the child overrides.
func (t *Themes) loadConfig() error {
	for _, dir := range slices.Backward(t.Dirs) {
		data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
		if err != nil {
			continue
		}
		var cfg map[string]any
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return foundationerrors.ConfigError("invalid theme config").
				WithCause(err).
				WithContext("source", filepath.Join(dir, ConfigFile)).Build()
		}
		if err := mergo.Merge(&t.Config, cfg, mergo.WithOverride); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to merge theme config").Build()
		}
	}
	return nil
}

// Funcs returns the functions available to every template.
func Funcs(site config.SiteConfig) map[string]any {
	return map[string]any{
		"strftime": func(layout string, t time.Time) string { return strftime.Format(layout, t) },
		"safe":     func(s string) htmltemplate.HTML { return htmltemplate.HTML(s) },
		"absURL":   func(rel string) string { return urlpath.AbsURL(site.SiteURL, rel) },
		"toSlug":   urlpath.ToSlug,
		"lower":    strings.ToLower,
		"now":      time.Now,
	}
}

// parse loads every template below the theme directories. Names are paths
// relative to their theme directory; the child's file wins on a clash.
func (t *Themes) parse(snap config.Snapshot) error {
	funcs := Funcs(snap.Site)
	t.html = htmltemplate.New("").Funcs(htmltemplate.FuncMap(funcs))
	t.text = texttemplate.New("").Funcs(texttemplate.FuncMap(funcs))

	for _, dir := range t.Dirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			if t.names[name] || !isTemplate(name) {
				return nil
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			return t.add(name, string(data))
		})
		if err != nil {
			return foundationerrors.TemplateError("failed to load theme templates").
				WithCause(err).
				WithContext("theme", dir).Build()
		}
	}

	if !t.names[MainTemplate] {
		data, err := fallbackFS.ReadFile("fallback/" + MainTemplate)
		if err != nil {
			return foundationerrors.InternalError("missing built-in template").WithCause(err).Build()
		}
		if err := t.add(MainTemplate, string(data)); err != nil {
			return err
		}
	}
	return nil
}

func isTemplate(name string) bool {
	switch path.Ext(name) {
	case ".html", ".htm", ".xml", ".txt":
		return true
	}
	return false
}

func isHTML(name string) bool {
	ext := path.Ext(name)
	return ext == ".html" || ext == ".htm"
}

func (t *Themes) add(name, body string) error {
	var err error
	if isHTML(name) {
		_, err = t.html.New(name).Parse(body)
	} else {
		_, err = t.text.New(name).Parse(body)
	}
	if err != nil {
		return foundationerrors.TemplateError("failed to parse template").
			WithCause(err).
			WithContext("template", name).Build()
	}
	t.names[name] = true
	return nil
}

// Exists reports whether a template with the given name is available.
func (t *Themes) Exists(name string) bool {
	return t.names[name]
}

// Lookup returns the first existing template among candidates, falling back
// to main.html. Results are cached for the life of t.
func (t *Themes) Lookup(candidates []string) string {
	key := strings.Join(candidates, "\x00")
	t.mu.Lock()
	defer t.mu.Unlock()
	if name, ok := t.lookup[key]; ok {
		return name
	}
	name := MainTemplate
	for _, c := range candidates {
		if c != "" && t.names[c] {
			name = c
			break
		}
	}
	t.lookup[key] = name
	return name
}

// Render executes the named template with data.
func (t *Themes) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if isHTML(name) {
		err = t.html.ExecuteTemplate(&buf, name, data)
	} else {
		err = t.text.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, foundationerrors.TemplateError("failed to render template").
			WithCause(err).
			WithContext("template", name).Build()
	}
	return buf.Bytes(), nil
}

// RenderString renders body as an ad-hoc text template with the theme's
// functions. It is used for front matter templates of new documents.
func (t *Themes) RenderString(body string, data any, site config.SiteConfig) (string, error) {
	tpl, err := texttemplate.New("inline").Funcs(texttemplate.FuncMap(Funcs(site))).Parse(body)
	if err != nil {
		return "", foundationerrors.TemplateError("failed to parse inline template").WithCause(err).Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", foundationerrors.TemplateError("failed to render inline template").WithCause(err).Build()
	}
	return buf.String(), nil
}

// Asset is a theme file copied to the public directory.
type Asset struct {
	Src string
	// Dest is relative to the public directory: themes/{theme}/{rel}.
	Dest string
}

// Assets lists the static files of every theme directory. A child's file
// shadows the parent's file with the same relative path.
func (t *Themes) Assets() ([]Asset, error) {
	seen := map[string]bool{}
	var out []Asset
	for _, dir := range t.Dirs {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
			if !slices.Contains(AssetExtensions, ext) {
				return nil
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] {
				return nil
			}
			seen[rel] = true
			out = append(out, Asset{Src: p, Dest: path.Join("themes", t.Name, rel)})
			return nil
		})
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to list theme assets").
				WithContext("theme", dir).Build()
		}
	}
	return out, nil
}

// FindPrefix returns the first file in the theme directories whose name
// starts with prefix, such as "new_post." for document templates.
func (t *Themes) FindPrefix(prefix string) (string, bool) {
	for _, dir := range t.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
				return filepath.Join(dir, e.Name()), true
			}
		}
	}
	return "", false
}
