// Package markdown converts markdown document bodies into HTML with goldmark.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/siteforge/internal/config"
)

// Extensions lists the file extensions rendered as markdown. Other document
// types are passed through unchanged.
var Extensions = []string{"md", "markdown"}

// IsMarkdown reports whether a document extension (without dot) is markdown.
func IsMarkdown(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer from the markdown configuration section.
func New(cfg config.MarkdownConfig) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if cfg.Typographer {
		exts = append(exts, extension.Typographer)
	}
	if cfg.HighlightStyle != "" {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(cfg.HighlightStyle),
			highlighting.WithFormatOptions(),
		))
	}

	var parserOpts []parser.Option
	if cfg.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	var rendererOpts []goldmark.Option
	if cfg.Unsafe {
		// Raw HTML inside documents is kept; sources are trusted project files.
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	opts := []goldmark.Option{
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOpts...),
	}
	return &Renderer{md: goldmark.New(append(opts, rendererOpts...)...)}
}

// ToHTML converts a markdown body into HTML.
func (r *Renderer) ToHTML(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
