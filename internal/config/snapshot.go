package config

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode is the kind of run a snapshot is taken for.
type Mode string

const (
	ModeBuild Mode = "build"
	ModeServe Mode = "serve"
	ModeDraft Mode = "draft"
)

// Dirs holds absolute project directories.
type Dirs struct {
	Base   string
	Docs   string
	Public string
	Static string
	Cache  string
	Themes string
}

// Snapshot is the immutable view of the configuration handed to every
// pipeline stage. It is passed by value; its slices are private copies and
// must be treated as read-only.
type Snapshot struct {
	Site       SiteConfig
	Dirs       Dirs
	DocExt     []string
	Exclude    []string
	PostTypes  PostTypes
	Taxonomies Taxonomies
	Theme      ThemeConfig
	Plugins    Plugins
	Markdown   MarkdownConfig
	ExtraPages []string
	UseAbsURL  bool
	ServeAll   bool
	GitDates   bool
	Serve      ServeConfig
	Cache      CacheConfig
	Notify     NotifyConfig
	Extras     map[string]any

	Mode      Mode
	DraftPath string
	Now       time.Time
	// Hash identifies the configuration content that produced this snapshot.
	Hash string
}

// Snapshot freezes the configuration for one run.
func (c *Config) Snapshot(mode Mode, now time.Time) Snapshot {
	taxonomies := make(Taxonomies, len(c.Taxonomies))
	for i, t := range c.Taxonomies {
		t.Terms = slices.Clone(t.Terms)
		taxonomies[i] = t
	}
	return Snapshot{
		Site: c.Site,
		Dirs: Dirs{
			Base:   c.BaseDir,
			Docs:   c.Resolve(c.Directory.Docs),
			Public: c.Resolve(c.Directory.Public),
			Static: c.Resolve(c.Directory.Static),
			Cache:  c.Resolve(c.Directory.Cache),
			Themes: c.Resolve(c.Directory.Themes),
		},
		DocExt:     slices.Clone(c.DocExt),
		Exclude:    slices.Clone(c.Exclude),
		PostTypes:  slices.Clone(c.PostTypes),
		Taxonomies: taxonomies,
		Theme:      c.Theme,
		Plugins:    slices.Clone(c.Plugins),
		Markdown:   c.Markdown,
		ExtraPages: slices.Clone(c.ExtraPages),
		UseAbsURL:  c.UseAbsURL,
		ServeAll:   c.ServeAll,
		GitDates:   c.GitDates,
		Serve:      c.Serve,
		Cache:      c.Cache,
		Notify:     c.Notify,
		Extras:     maps.Clone(c.Extras),
		Mode:       mode,
		Now:        now,
		Hash:       c.Hash(),
	}
}

// WithPostTypes returns a copy of s using the given resolved post types.
func (s Snapshot) WithPostTypes(pts PostTypes) Snapshot {
	s.PostTypes = slices.Clone(pts)
	return s
}

// WithDraftPath returns a copy of s previewing a single document.
func (s Snapshot) WithDraftPath(path string) Snapshot {
	s.DraftPath = path
	return s
}

// Hash computes a stable digest of the configuration content. Two configs
// that marshal identically hash identically.
func (c *Config) Hash() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	out, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	h.Write(out)
	h.Write([]byte{0})
	h.Write([]byte(c.BaseDir))
	return hex.EncodeToString(h.Sum(nil))
}

// DocExtAllowed reports whether ext (without dot) is an accepted document extension.
func (s Snapshot) DocExtAllowed(ext string) bool {
	return slices.Contains(s.DocExt, ext)
}
