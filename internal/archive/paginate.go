package archive

import (
	"path"
	"strconv"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// DefaultDateLimit is the page size of date archives without a limit.
const DefaultDateLimit = 10

// DestClaimer records destination paths and rejects duplicates.
type DestClaimer interface {
	Claim(destPath, owner string) error
}

// Page is one rendered page of an archive listing.
type Page struct {
	Node   *Node
	Number int
	// Items is this page's slice of the listing.
	Items []*content.Item

	DestPath string
	RelURL   string
	AbsURL   string
	URL      string

	Prev *Page
	Next *Page

	Paginator *Paginator
	HTML      []byte
}

func (p *Page) String() string {
	return p.Node.ID + "#" + strconv.Itoa(p.Number)
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Prev != nil }

// HasNext reports whether a following page exists.
func (p *Page) HasNext() bool { return p.Next != nil }

// Paginator splits a node listing into pages.
type Paginator struct {
	Limit         int
	FirstLimit    int
	Path          string
	TotalElements int
	Pages         []*Page
}

// First returns the first page.
func (p *Paginator) First() *Page { return p.Pages[0] }

// Last returns the last page.
func (p *Paginator) Last() *Page { return p.Pages[len(p.Pages)-1] }

// TotalPages returns the number of pages.
func (p *Paginator) TotalPages() int { return len(p.Pages) }

// Listing returns the items a node lists: every member below it for date
// and taxonomy archives, direct members for section and simple archives. A
// linked section index document is not listed.
func (t *Tree) Listing(n *Node) []*content.Item {
	switch n.Type {
	case TypeSection, TypeSimple:
		items := t.Items(n.Singles)
		if n.IndexID == "" {
			return items
		}
		out := items[:0]
		for _, item := range items {
			if item.ID != n.IndexID {
				out = append(out, item)
			}
		}
		return out
	default:
		return t.Items(n.SinglesAll)
	}
}

// Paginate builds the pages of every renderable node and claims their
// destinations. Nodes above depth 3, nodes without members and nodes whose
// index document opted out of rendering get no pages.
func (t *Tree) Paginate(claims DestClaimer) error {
	for _, id := range t.order {
		n := t.nodes[id]
		n.Paginator = nil
		if n.Depth < RootDepth || !n.ShouldRender || len(n.SinglesAll) == 0 {
			continue
		}
		rc, ok := t.rootConfig(n)
		if !ok {
			continue
		}
		listing := t.Listing(n)
		n.Paginator = t.paginate(n, rc, listing)
		if !n.ShouldOutput || claims == nil {
			continue
		}
		for _, page := range n.Paginator.Pages {
			if err := claims.Claim(page.DestPath, page.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) paginate(n *Node, rc rootConfig, listing []*content.Item) *Paginator {
	total := len(listing)
	limit := rc.Limit
	if limit <= 0 {
		switch n.Type {
		case TypeDate:
			limit = DefaultDateLimit
		case TypeTaxonomy:
			limit = config.DefaultTaxonomyLimit
		default:
			limit = total
		}
	}
	first := rc.FirstLimit
	if first <= 0 {
		first = limit
	}
	segment := rc.Path
	if segment == "" {
		segment = config.DefaultPaginatorPath
	}
	pg := &Paginator{Limit: limit, FirstLimit: first, Path: segment, TotalElements: total}

	start, end := 0, min(first, total)
	for number := 1; number == 1 || start < end; number++ {
		dest := path.Join(n.DestDir, urlpath.IndexFile)
		if number > 1 {
			dest = path.Join(n.DestDir, segment, strconv.Itoa(number), urlpath.IndexFile)
		}
		rel := urlpath.URLFromDestPath(dest)
		abs := urlpath.AbsURL(t.snap.Site.SiteURL, rel)
		page := &Page{
			Node:      n,
			Number:    number,
			Items:     listing[start:end],
			DestPath:  dest,
			RelURL:    rel,
			AbsURL:    abs,
			URL:       t.pickURL(abs, rel),
			Paginator: pg,
		}
		if len(pg.Pages) > 0 {
			prev := pg.Pages[len(pg.Pages)-1]
			prev.Next, page.Prev = page, prev
		}
		pg.Pages = append(pg.Pages, page)
		if limit <= 0 {
			break
		}
		start, end = end, min(end+limit, total)
	}
	return pg
}

// TemplateCandidates lists the templates tried for a node, most specific
// first.
func TemplateCandidates(n *Node) []string {
	prefix := "archive-" + n.Type
	return []string{
		prefix + "-" + n.Slug + ".html",
		prefix + "-" + n.Name + ".html",
		prefix + "-" + n.RootName + ".html",
		prefix + ".html",
		"archive.html",
		"main.html",
	}
}

// Pages returns every generated archive page in node order.
func (t *Tree) Pages() []*Page {
	var out []*Page
	for _, id := range t.order {
		if pg := t.nodes[id].Paginator; pg != nil {
			out = append(out, pg.Pages...)
		}
	}
	return out
}
