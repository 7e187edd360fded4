package content

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/permalink"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// ResolveURLs assigns RelURL, AbsURL, URL, DestPath and DestDir to every
// item. chains answers dynamic archive placeholders and may be nil in draft
// mode. The first unresolvable permalink aborts resolution.
func (c *Collection) ResolveURLs(chains permalink.ArchiveChains) error {
	roots := make(map[string]bool, len(c.snap.PostTypes)+len(c.snap.Taxonomies))
	for _, pt := range c.snap.PostTypes {
		roots[pt.Name] = true
	}
	for _, tax := range c.snap.Taxonomies {
		roots[tax.Name] = true
	}
	for _, item := range c.Items {
		if err := item.ResolveURL(c.snap, chains, roots); err != nil {
			return err
		}
	}
	return nil
}

// ResolveURL computes the item's URLs. An explicit front matter url wins over
// the post type permalink. In draft mode the item is placed at the site root.
func (i *Item) ResolveURL(snap config.Snapshot, chains permalink.ArchiveChains, roots map[string]bool) error {
	var rel string
	switch {
	case snap.Mode == config.ModeDraft:
		rel = "/"
	default:
		if explicit, ok := i.MetaString("url"); ok && strings.TrimSpace(explicit) != "" {
			rel = permalink.Explicit(explicit)
			break
		}
		pt, _ := snap.PostTypes.Get(i.PostType)
		slug := pt.Slug
		if slug == "" {
			slug = i.PostType
		}
		var err error
		rel, err = permalink.Expand(permalink.Input{
			Source:       i.AbsSrcPath,
			Permalink:    i.permalinkTemplate(pt),
			Date:         i.Date,
			Slug:         i.Slug,
			Filename:     i.Filename,
			SrcDir:       i.SrcDir,
			PostTypeSlug: urlpath.ToSlug(slug),
			AddPrefix:    pt.AddPrefixToURL,
			MemberOf:     i.ArchiveIDs,
			Roots:        roots,
		}, chains)
		if err != nil {
			return err
		}
	}

	i.RelURL = rel
	i.DestPath = urlpath.DestPathFromURL(rel)
	i.DestDir = path.Dir(i.DestPath)
	i.AbsURL = urlpath.AbsURL(snap.Site.SiteURL, rel)
	if snap.UseAbsURL {
		i.URL = i.AbsURL
	} else {
		i.URL = i.RelURL
	}
	return nil
}

// permalinkTemplate returns the post type permalink, or a template mirroring
// the source directory layout when none is configured.
func (i *Item) permalinkTemplate(pt config.PostType) string {
	if pt.Permalink != "" {
		return pt.Permalink
	}
	dir := ""
	if _, rest, ok := strings.Cut(i.SrcDir, "/"); ok {
		dir = rest
	}
	return "/" + dir + "/{filename}/"
}
