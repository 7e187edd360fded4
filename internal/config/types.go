package config

// Config represents the siteforge project configuration loaded from siteforge.yml.
type Config struct {
	Site       SiteConfig      `yaml:"site"`
	Directory  DirectoryConfig `yaml:"directory"`
	DocExt     []string        `yaml:"doc_ext"`
	Exclude    []string        `yaml:"exclude,omitempty"`
	PostTypes  PostTypes       `yaml:"post_type"`
	Taxonomies Taxonomies      `yaml:"taxonomy,omitempty"`
	Theme      ThemeConfig     `yaml:"theme"`
	Plugins    Plugins         `yaml:"plugins"`
	Markdown   MarkdownConfig  `yaml:"markdown"`
	ExtraPages []string        `yaml:"extra_pages,omitempty"`
	UseAbsURL  bool            `yaml:"use_abs_url"`
	ServeAll   bool            `yaml:"serve_all,omitempty"`
	GitDates   bool            `yaml:"git_dates,omitempty"`
	LogLevel   LogLevel        `yaml:"log_level,omitempty"`
	Serve      ServeConfig     `yaml:"serve"`
	Cache      CacheConfig     `yaml:"cache"`
	Notify     NotifyConfig    `yaml:"notify,omitempty"`

	// Extras keeps unknown top-level keys for plugins and templates.
	Extras map[string]any `yaml:",inline"`

	// BaseDir is the directory holding the configuration file. Relative
	// directories resolve against it.
	BaseDir string `yaml:"-"`

	// Warnings collects normalization notices produced while loading.
	Warnings []string `yaml:"-"`
}

// SiteConfig holds site-wide metadata exposed to templates.
type SiteConfig struct {
	SiteName  string         `yaml:"site_name"`
	SiteURL   string         `yaml:"site_url"`
	SiteDesc  string         `yaml:"site_desc"`
	SiteImage string         `yaml:"site_image"`
	Language  string         `yaml:"language"`
	Extras    map[string]any `yaml:",inline"`
}

// DirectoryConfig names the project directories, relative to BaseDir unless absolute.
type DirectoryConfig struct {
	Docs   string `yaml:"docs"`
	Public string `yaml:"public"`
	Static string `yaml:"static"`
	Cache  string `yaml:"cache"`
	Themes string `yaml:"themes"`
}

// ArchiveType controls how a post type's documents are grouped into archives.
type ArchiveType string

const (
	ArchiveDate    ArchiveType = "date"
	ArchiveSection ArchiveType = "section"
	ArchiveSimple  ArchiveType = "simple"
	ArchiveNone    ArchiveType = "none"
)

// PostType is one entry of the ordered post_type table. A post type maps to a
// top-level directory under the docs directory.
type PostType struct {
	Name           string         `yaml:"-"`
	Permalink      string         `yaml:"permalink,omitempty"`
	ArchiveType    ArchiveType    `yaml:"archive_type,omitempty"`
	Slug           string         `yaml:"slug,omitempty"`
	AddPrefixToURL bool           `yaml:"add_prefix_to_url"`
	FlatURL        bool           `yaml:"flat_url,omitempty"`
	Limit          int            `yaml:"limit,omitempty"`
	FirstLimit     int            `yaml:"first_limit,omitempty"`
	Path           string         `yaml:"path,omitempty"`
	Extras         map[string]any `yaml:",inline"`
}

// NewPostType returns a post type carrying the values an undeclared entry gets.
func NewPostType(name string) PostType {
	return PostType{Name: name, AddPrefixToURL: true}
}

// Taxonomy is one entry of the ordered taxonomy table.
type Taxonomy struct {
	Name           string         `yaml:"-"`
	Slug           string         `yaml:"slug,omitempty"`
	Limit          int            `yaml:"limit,omitempty"`
	FirstLimit     int            `yaml:"first_limit,omitempty"`
	Path           string         `yaml:"path,omitempty"`
	AddPrefixToURL bool           `yaml:"add_prefix_to_url"`
	FlatURL        bool           `yaml:"flat_url,omitempty"`
	Terms          Terms          `yaml:"terms,omitempty"`
	Extras         map[string]any `yaml:",inline"`
}

// NewTaxonomy returns a taxonomy carrying the values an entry without settings gets.
func NewTaxonomy(name string) Taxonomy {
	return Taxonomy{Name: name, AddPrefixToURL: true}
}

// Term is a declared taxonomy term. An empty Parent, or a Parent equal to the
// taxonomy name or to the term itself, attaches the term directly under the
// taxonomy root.
type Term struct {
	Name   string `yaml:"-"`
	Slug   string `yaml:"slug,omitempty"`
	Parent string `yaml:"parent,omitempty"`
}

// ThemeConfig selects the theme and an optional child theme overriding it.
type ThemeConfig struct {
	Name  string `yaml:"name"`
	Child string `yaml:"child,omitempty"`
}

// PluginSpec enables one plugin with its options.
type PluginSpec struct {
	Name    string
	Options map[string]any
}

// MarkdownConfig tunes the markdown renderer.
type MarkdownConfig struct {
	Typographer    bool   `yaml:"typographer"`
	Unsafe         bool   `yaml:"unsafe"`
	HeadingIDs     bool   `yaml:"heading_ids"`
	HighlightStyle string `yaml:"highlight_style"`
}

// ServeConfig configures serve mode.
type ServeConfig struct {
	Port int `yaml:"port"`
	// RebuildInterval triggers a periodic rebuild when positive (Go duration string).
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
	Metrics         bool   `yaml:"metrics"`
}

// CacheConfig configures the persistent build cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// NotifyConfig configures the build notification plugin.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// LogLevel is the configured minimum log level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
