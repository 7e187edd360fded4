// Package autop wraps plain HTML and text documents in paragraphs.
package autop

import (
	"regexp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// Name is the plugin's configuration name.
const Name = "autop"

var (
	blankLines = regexp.MustCompile(`\n[ \t]*\n`)
	blockStart = regexp.MustCompile(`(?i)^<(?:table|thead|tbody|tfoot|tr|td|th|div|dl|dd|dt|ul|ol|li|pre|form|blockquote|address|p|h[1-6]|hr|section|article|aside|header|footer|nav|figure|figcaption|details|script|style|!--)[\s>/]?`)
	emptyPara  = regexp.MustCompile(`<p>\s*</p>\n?`)
	paraBlock  = regexp.MustCompile(`(?i)<p>\s*(</?(?:div|ul|ol|pre|table|blockquote|h[1-6]|section|figure)[^>]*>)`)
	blockPara  = regexp.MustCompile(`(?i)(</?(?:div|ul|ol|pre|table|blockquote|h[1-6]|section|figure)[^>]*>)\s*</p>`)
)

// Plugin is the autop plugin.
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
		Type:        plugin.TypeContent,
		Description: "Paragraph wrapping for html, htm and txt documents",
	}
}

// Attach implements plugin.Plugin. Options: ext (list of extensions, default
// html, htm, txt) and br (convert single newlines, default true).
func (p *Plugin) Attach(hooks *plugin.Hooks, pctx *plugin.Context) error {
	exts := []string{"html", "htm", "txt"}
	if raw, ok := pctx.Options["ext"].([]any); ok {
		exts = exts[:0]
		for _, e := range raw {
			if s, ok := e.(string); ok {
				exts = append(exts, strings.TrimPrefix(s, "."))
			}
		}
	}
	br := pctx.GetBool("br", true)

	hooks.GetContent = append(hooks.GetContent, func(item *content.Item, doc string) (string, bool) {
		if !slices.Contains(exts, item.Ext) {
			return "", false
		}
		return Wrap(doc, br), true
	})
	hooks.AfterRenderHTML = append(hooks.AfterRenderHTML, func(item *content.Item, html string) (string, error) {
		if !slices.Contains(exts, item.Ext) {
			return html, nil
		}
		return Cleanup(html), nil
	})
	return nil
}

// Wrap turns blank-line separated blocks into paragraphs. Blocks that start
// with a block-level tag are left alone. With br set, single newlines inside
// a paragraph become line breaks.
func Wrap(text string, br bool) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, block := range blankLines.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if blockStart.MatchString(block) {
			b.WriteString(block)
			b.WriteString("\n")
			continue
		}
		if br {
			block = strings.ReplaceAll(block, "\n", "<br />\n")
		}
		b.WriteString("<p>")
		b.WriteString(block)
		b.WriteString("</p>\n")
	}
	return b.String()
}

// Cleanup removes empty paragraphs and paragraph tags wrapped around
// block-level elements.
func Cleanup(html string) string {
	html = paraBlock.ReplaceAllString(html, "$1")
	html = blockPara.ReplaceAllString(html, "$1")
	return emptyPara.ReplaceAllString(html, "")
}
