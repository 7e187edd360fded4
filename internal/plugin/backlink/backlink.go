// Package backlink records which documents link to each other.
package backlink

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// Name is the plugin's configuration name.
const Name = "backlink"

// Plugin is the backlink plugin.
type Plugin struct {
	plugin.BasePlugin
}

// New returns the plugin.
func New() plugin.Plugin { return &Plugin{} }

// Metadata implements plugin.Plugin.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.TypeLinks,
		Description: "Collects internal links and fills back-links",
	}
}

// Attach implements plugin.Plugin. Links are collected once every document
// URL is known.
func (p *Plugin) Attach(hooks *plugin.Hooks, pctx *plugin.Context) error {
	siteURL := pctx.Snapshot.Site.SiteURL
	hooks.AfterUpdateSinglesURL = append(hooks.AfterUpdateSinglesURL, func(c *content.Collection) error {
		n := Link(c.Items, siteURL)
		pctx.Logger.Debug("Collected back-links", logfields.Count(n))
		return nil
	})
	return nil
}

// Link fills Links and BackLinks of items and returns the number of
// internal links found.
func Link(items []*content.Item, siteURL string) int {
	byURL := make(map[string]*content.Item, len(items))
	for _, item := range items {
		if item.RelURL != "" {
			byURL[item.RelURL] = item
		}
	}
	total := 0
	for _, item := range items {
		item.Links = Extract(item.Content, item.RelURL, siteURL)
		for _, l := range item.Links {
			target, ok := byURL[l]
			if !ok || target == item {
				continue
			}
			total++
			if !slices.Contains(target.BackLinks, item) {
				target.BackLinks = append(target.BackLinks, item)
			}
		}
	}
	return total
}

// Extract returns the distinct site-relative URLs linked from doc, in
// document order. Relative hrefs resolve against base. External links and
// fragment-only links are skipped.
func Extract(doc, base, siteURL string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = &url.URL{Path: "/"}
	}
	var out []string
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					if l, ok := normalize(string(val), baseURL, siteURL); ok && !slices.Contains(out, l) {
						out = append(out, l)
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

func normalize(href string, base *url.URL, siteURL string) (string, bool) {
	href = strings.TrimSpace(href)
	if siteURL != "" && strings.HasPrefix(href, siteURL) {
		href = "/" + strings.TrimLeft(strings.TrimPrefix(href, siteURL), "/")
	}
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	resolved := base.ResolveReference(&url.URL{Path: u.Path})
	return strings.ToLower(resolved.EscapedPath()), true
}
