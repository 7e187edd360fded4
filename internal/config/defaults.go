package config

import (
	"strings"
)

// DefaultPaginatorPath is the URL segment between an archive directory and a page number.
const DefaultPaginatorPath = "path"

// DefaultTaxonomyLimit is the number of items per taxonomy archive page.
const DefaultTaxonomyLimit = 10

// Default returns the configuration used when siteforge.yml omits a section.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			SiteName: "Site Title",
			Language: "en",
		},
		DocExt: []string{"md", "markdown", "html", "htm", "txt"},
		PostTypes: PostTypes{
			{Name: "post", Permalink: "/%Y/%m/%d/%H%M%S/", ArchiveType: ArchiveDate, AddPrefixToURL: true},
			{Name: "page", Permalink: "/{slug}/", ArchiveType: ArchiveSection, AddPrefixToURL: true},
		},
		Plugins: Plugins{
			{Name: "autop", Options: map[string]any{}},
			{Name: "select-pages", Options: map[string]any{}},
		},
		Markdown: MarkdownConfig{
			Typographer:    true,
			Unsafe:         true,
			HeadingIDs:     true,
			HighlightStyle: "github",
		},
		UseAbsURL: true,
		Serve: ServeConfig{
			Port:    8000,
			Metrics: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			File:    "build.db",
		},
	}
}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// DirectoryDefaultApplier fills in the standard project directory names.
type DirectoryDefaultApplier struct{}

func (d *DirectoryDefaultApplier) Domain() string { return "directory" }

func (d *DirectoryDefaultApplier) ApplyDefaults(cfg *Config) error {
	dirs := &cfg.Directory
	for _, f := range []struct {
		field *string
		name  string
	}{
		{&dirs.Docs, "docs"},
		{&dirs.Public, "public"},
		{&dirs.Static, "static"},
		{&dirs.Cache, "cache"},
		{&dirs.Themes, "themes"},
	} {
		if strings.TrimSpace(*f.field) == "" {
			*f.field = f.name
		}
	}
	return nil
}

// SiteDefaultApplier canonicalizes site URLs.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	site := &cfg.Site
	site.SiteURL = strings.TrimRight(site.SiteURL, "/")
	if site.SiteURL != "" && strings.HasPrefix(site.SiteImage, site.SiteURL) {
		site.SiteImage = strings.TrimPrefix(site.SiteImage, site.SiteURL)
	}
	if site.Language == "" {
		site.Language = "en"
	}
	if len(cfg.DocExt) == 0 {
		cfg.DocExt = Default().DocExt
	}
	return nil
}

// PostTypeDefaultApplier fills permalink, archive type and slug per post type.
type PostTypeDefaultApplier struct{}

func (p *PostTypeDefaultApplier) Domain() string { return "post_type" }

func (p *PostTypeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.PostTypes) == 0 {
		cfg.PostTypes = Default().PostTypes
	}
	for i := range cfg.PostTypes {
		ApplyPostTypeDefaults(&cfg.PostTypes[i])
	}
	return nil
}

// ApplyPostTypeDefaults fills the unset fields of a single post type. It is
// also used for post types discovered on disk.
func ApplyPostTypeDefaults(pt *PostType) {
	if pt.ArchiveType == "" {
		if pt.Name == "post" {
			pt.ArchiveType = ArchiveDate
		} else {
			pt.ArchiveType = ArchiveSection
		}
	}
	if pt.Permalink == "" {
		if pt.Name == "post" {
			pt.Permalink = "/%Y/%m/%d/%H%M%S/"
		} else {
			pt.Permalink = "/{slug}/"
		}
	}
	if pt.Slug == "" {
		pt.Slug = pt.Name
	}
	if pt.Path == "" {
		pt.Path = DefaultPaginatorPath
	}
}

// TaxonomyDefaultApplier fills slug, limit and term slugs per taxonomy.
type TaxonomyDefaultApplier struct{}

func (t *TaxonomyDefaultApplier) Domain() string { return "taxonomy" }

func (t *TaxonomyDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.Taxonomies {
		tax := &cfg.Taxonomies[i]
		if tax.Slug == "" {
			tax.Slug = tax.Name
		}
		if tax.Limit == 0 {
			tax.Limit = DefaultTaxonomyLimit
		}
		if tax.Path == "" {
			tax.Path = DefaultPaginatorPath
		}
	}
	return nil
}

// ServeDefaultApplier fills serve and cache defaults.
type ServeDefaultApplier struct{}

func (s *ServeDefaultApplier) Domain() string { return "serve" }

func (s *ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 8000
	}
	if cfg.Cache.File == "" {
		cfg.Cache.File = "build.db"
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "siteforge.build"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogLevelInfo
	}
	return nil
}

// defaultApplierChain runs every domain applier in order.
type defaultApplierChain struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier chain used by Load.
func NewDefaultApplier() DefaultApplier {
	return &defaultApplierChain{appliers: []DefaultApplier{
		&DirectoryDefaultApplier{},
		&SiteDefaultApplier{},
		&PostTypeDefaultApplier{},
		&TaxonomyDefaultApplier{},
		&ServeDefaultApplier{},
	}}
}

func (c *defaultApplierChain) Domain() string { return "all" }

func (c *defaultApplierChain) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
