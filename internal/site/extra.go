package site

import (
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// DefaultExtraPages are rendered whenever the theme provides them.
var DefaultExtraPages = []string{HomeTemplate, "404.html", "sitemap.html", "sitemap.xml"}

// ExtraPage is a theme template rendered once per site outside the content
// and archive pages.
type ExtraPage struct {
	Template string
	DestPath string
	HTML     []byte
}

// extraPages lists the extra pages the theme can render. Configured pages
// the theme lacks are reported as warnings.
func (bs *BuildState) extraPages() []ExtraPage {
	var out []ExtraPage
	seen := map[string]bool{}
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		dest := name
		if name == HomeTemplate {
			dest = urlpath.IndexFile
		}
		out = append(out, ExtraPage{Template: name, DestPath: dest})
	}
	for _, name := range DefaultExtraPages {
		if bs.Themes.Exists(name) {
			add(name)
		}
	}
	for _, name := range bs.Snapshot.ExtraPages {
		if !bs.Themes.Exists(name) {
			bs.warn("extra page template not found", logfields.Template(name))
			continue
		}
		add(name)
	}
	return out
}
