package theme

import (
	"git.home.luguber.info/inful/siteforge/internal/archive"
	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
)

// Data is the value every template is executed with. Exactly one of Single,
// Archive or Extra is set.
type Data struct {
	Site  config.SiteConfig
	Theme map[string]any
	// Config holds unknown top-level configuration keys.
	Config  map[string]any
	BuildID string
	Mode    config.Mode

	Title string
	// Home is the site root URL.
	Home string

	Single  *content.Item
	Archive *archive.Node
	// Extra names the extra page being rendered.
	Extra string

	// Page and Paginator are set for paginated archive pages; Items holds the
	// page's slice of the listing.
	Page      *archive.Page
	Paginator *archive.Paginator
	Items     []*content.Item

	Collection *content.Collection
	Tree       *archive.Tree
}
