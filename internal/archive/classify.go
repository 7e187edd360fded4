package archive

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// ClassifyPostTypes places every item into its post type archive according
// to the post type's archive type. Items of archive type none are skipped.
func (t *Tree) ClassifyPostTypes() {
	for _, item := range t.items {
		id, ok := postTypeArchiveID(item)
		if !ok {
			continue
		}
		t.addSingle(t.GetOrCreate(id), item)
	}
}

func postTypeArchiveID(item *content.Item) (string, bool) {
	switch item.ArchiveType {
	case config.ArchiveDate:
		return fmt.Sprintf("/%s/%s/%04d/%02d", TypeDate, item.PostType, item.Date.Year(), int(item.Date.Month())), true
	case config.ArchiveSection:
		// SrcDir starts with the post type directory, which names the
		// root-name node; deeper directories mirror into nested nodes.
		return "/" + TypeSection + "/" + item.SrcDir, true
	case config.ArchiveSimple:
		return "/" + TypeSimple + "/" + item.PostType, true
	default:
		return "", false
	}
}

// ClassifyTaxonomies materializes the declared terms of every taxonomy and
// attaches items to the terms named in their front matter.
//
// A term hangs below its declared parent; an empty parent, the taxonomy name
// or the term's own name attaches it to the taxonomy root. Terms whose parent chain
// does not resolve inside the taxonomy, or loops, are left out together with
// everything below them. Items naming unknown terms are skipped for that term.
func (t *Tree) ClassifyTaxonomies() {
	for _, tax := range t.snap.Taxonomies {
		t.GetOrCreate("/" + TypeTaxonomy + "/" + tax.Name)
		ids := t.termIDs(tax)
		for _, term := range tax.Terms {
			id, ok := ids[term.Name]
			if !ok {
				continue
			}
			n := t.GetOrCreate(id)
			if term.Slug != "" {
				n.Slug = urlpath.ToSlug(term.Slug)
			}
		}

		for _, item := range t.items {
			for _, name := range item.MetaList(tax.Name) {
				id, ok := ids[name]
				if !ok {
					t.warn("unknown taxonomy term",
						logfields.Taxonomy(tax.Name), logfields.Term(name), logfields.Path(item.ID))
					continue
				}
				t.addSingle(t.GetOrCreate(id), item)
			}
		}
	}
}

// termIDs resolves the nested id of every declared term of tax.
func (t *Tree) termIDs(tax config.Taxonomy) map[string]string {
	rootID := "/" + TypeTaxonomy + "/" + tax.Name
	parents := make(map[string]string, len(tax.Terms))
	for _, term := range tax.Terms {
		parent := term.Parent
		if parent == tax.Name || parent == term.Name {
			parent = ""
		}
		parents[term.Name] = parent
	}

	ids := make(map[string]string, len(tax.Terms))
	for _, term := range tax.Terms {
		chain := []string{term.Name}
		seen := map[string]bool{term.Name: true}
		cur := parents[term.Name]
		ok := true
		for cur != "" {
			p, declared := parents[cur]
			if !declared || seen[cur] {
				ok = false
				break
			}
			seen[cur] = true
			chain = append(chain, cur)
			cur = p
		}
		if !ok {
			t.warn("pruned taxonomy term with unresolvable parent",
				logfields.Taxonomy(tax.Name), logfields.Term(term.Name), slog.String("parent", term.Parent))
			continue
		}
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
		ids[term.Name] = rootID + "/" + strings.Join(chain, "/")
	}
	return ids
}
