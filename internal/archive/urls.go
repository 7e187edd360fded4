package archive

import (
	"path"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// rootConfig is the part of a post type or taxonomy configuration that
// shapes archive URLs and pagination.
type rootConfig struct {
	Slug       string
	AddPrefix  bool
	FlatURL    bool
	Limit      int
	FirstLimit int
	Path       string
}

func (t *Tree) rootConfig(n *Node) (rootConfig, bool) {
	if n.Type == TypeTaxonomy {
		tax, ok := t.snap.Taxonomies.Get(n.RootName)
		if !ok {
			return rootConfig{}, false
		}
		limit := tax.Limit
		if limit <= 0 {
			limit = config.DefaultTaxonomyLimit
		}
		return rootConfig{tax.Slug, tax.AddPrefixToURL, tax.FlatURL, limit, tax.FirstLimit, tax.Path}, true
	}
	pt, ok := t.snap.PostTypes.Get(n.RootName)
	if !ok {
		return rootConfig{}, false
	}
	return rootConfig{pt.Slug, pt.AddPrefixToURL, pt.FlatURL, pt.Limit, pt.FirstLimit, pt.Path}, true
}

// ResolveURLs assigns destinations and URLs to every node at depth 3 or
// deeper, parents first.
//
// A root-name node lives at {slug}/index.html, or at the site root when the
// post type or taxonomy disables the URL prefix. Deeper nodes append their
// slug to the parent's directory, or to the root-name directory when flat
// URLs are enabled. A node linked to a section index document takes that
// document's destination. Item URLs must be resolved before this runs.
func (t *Tree) ResolveURLs() error {
	for _, id := range t.order {
		n := t.nodes[id]
		if n.Depth < RootDepth {
			continue
		}
		rc, ok := t.rootConfig(n)
		if !ok {
			return foundationerrors.ArchiveError("no post type or taxonomy configured for archive").
				WithContext("archive", n.ID).
				WithContext("root_name", n.RootName).
				Fatal().Build()
		}
		slug := rc.Slug
		if slug == "" {
			slug = n.RootName
		}
		slug = urlpath.ToSlug(slug)

		rootDest := urlpath.IndexFile
		if rc.AddPrefix {
			rootDest = path.Join(slug, urlpath.IndexFile)
		}

		switch {
		case n.IsRoot():
			if n.IndexID == "" {
				n.Slug = slug
			}
			n.DestPath = rootDest
		default:
			base := path.Dir(rootDest)
			if !rc.FlatURL {
				base = t.nodes[n.ParentID].DestDir
			}
			n.DestPath = path.Join(base, n.Slug, urlpath.IndexFile)
		}

		if item, ok := t.itemByID[n.IndexID]; ok && n.IndexID != "" {
			n.DestPath = item.DestPath
		}
		n.DestDir = path.Dir(n.DestPath)
		n.RelURL = urlpath.URLFromDestPath(n.DestPath)
		n.AbsURL = urlpath.AbsURL(t.snap.Site.SiteURL, n.RelURL)
		n.URL = t.pickURL(n.AbsURL, n.RelURL)
	}
	return nil
}

func (t *Tree) pickURL(abs, rel string) string {
	if t.snap.UseAbsURL {
		return abs
	}
	return rel
}

// SlugChain implements permalink.ArchiveChains. It looks for the first
// archive in memberOf whose root name is rootName and returns the slugs from
// the topmost archive below the root-name node down to that archive.
func (t *Tree) SlugChain(memberOf []string, rootName string) ([]string, bool) {
	for _, id := range memberOf {
		n, ok := t.nodes[id]
		if !ok || n.RootName != rootName {
			continue
		}
		if n.Depth <= RootDepth {
			return nil, true
		}
		var slugs []string
		for cur := n; cur != nil && cur.Depth > RootDepth; cur = t.nodes[cur.ParentID] {
			slugs = append(slugs, cur.Slug)
		}
		for i, j := 0, len(slugs)-1; i < j; i, j = i+1, j-1 {
			slugs[i], slugs[j] = slugs[j], slugs[i]
		}
		return slugs, true
	}
	return nil, false
}
