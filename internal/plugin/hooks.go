package plugin

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"git.home.luguber.info/inful/siteforge/internal/archive"
	"git.home.luguber.info/inful/siteforge/internal/content"
)

// CollectionHook observes or changes the document collection.
type CollectionHook func(c *content.Collection) error

// TreeHook observes or changes the archive tree.
type TreeHook func(t *archive.Tree) error

// ContentHandler supplies the HTML of a document. handled reports whether
// the handler produced the content; the first handler that does wins.
type ContentHandler func(item *content.Item, doc string) (html string, handled bool)

// RenderHook transforms a document's content or rendered page.
type RenderHook func(item *content.Item, s string) (string, error)

// OutputHook runs after a group of files was written to publicDir.
type OutputHook func(publicDir string) error

// EndHook receives the outcome of a finished build.
type EndHook func(ctx context.Context, summary BuildSummary) error

// BuildSummary describes a finished build.
type BuildSummary struct {
	BuildID   string        `json:"build_id"`
	Mode      string        `json:"mode"`
	Outcome   string        `json:"outcome"`
	SiteURL   string        `json:"site_url"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	Singles   int           `json:"singles"`
	Archives  int           `json:"archives"`
	Written   int           `json:"written"`
	Skipped   int           `json:"skipped"`
	Warnings  int           `json:"warnings"`
	Errors    []string      `json:"errors,omitempty"`
	ConfigSHA string        `json:"config_hash"`
}

// Hooks holds the ordered handlers of every hook point. The zero value has
// no handlers and every call is a no-op.
type Hooks struct {
	AfterInitializeSingles []CollectionHook
	AfterSetupSingles      []CollectionHook
	AfterSortSingles       []CollectionHook
	AfterUpdateSinglesURL  []CollectionHook

	GetContent []ContentHandler

	BeforeUpdateSinglesHTML []CollectionHook
	AfterUpdateSinglesHTML  []CollectionHook
	BeforeRenderHTML        []RenderHook
	AfterRenderHTML         []RenderHook

	AfterSetupArchives       []TreeHook
	AfterUpdateArchivesURL   []TreeHook
	BeforeUpdateArchivesHTML []TreeHook
	AfterUpdateArchivesHTML  []TreeHook

	AfterOutputSingles  []OutputHook
	AfterOutputArchives []OutputHook
	AfterOutputSite     []OutputHook

	OnEnd []EndHook
}

// RunCollection calls hooks in order and stops at the first error.
func RunCollection(hooks []CollectionHook, c *content.Collection) error {
	for _, h := range hooks {
		if err := h(c); err != nil {
			return err
		}
	}
	return nil
}

// RunTree calls hooks in order and stops at the first error.
func RunTree(hooks []TreeHook, t *archive.Tree) error {
	for _, h := range hooks {
		if err := h(t); err != nil {
			return err
		}
	}
	return nil
}

// RunOutput calls hooks in order and stops at the first error.
func RunOutput(hooks []OutputHook, publicDir string) error {
	for _, h := range hooks {
		if err := h(publicDir); err != nil {
			return err
		}
	}
	return nil
}

// RunRender threads s through hooks in order.
func RunRender(hooks []RenderHook, item *content.Item, s string) (string, error) {
	var err error
	for _, h := range hooks {
		if s, err = h(item, s); err != nil {
			return "", err
		}
	}
	return s, nil
}

// OnGetContent implements content.ContentHook.
func (h *Hooks) OnGetContent(item *content.Item, doc string) (string, bool) {
	if h == nil {
		return doc, false
	}
	for _, fn := range h.GetContent {
		if html, ok := fn(item, doc); ok {
			return html, true
		}
	}
	return doc, false
}

// End calls every OnEnd handler. A failing handler does not stop the
// others; their errors are combined.
func (h *Hooks) End(ctx context.Context, summary BuildSummary) error {
	var err error
	for _, fn := range h.OnEnd {
		err = multierr.Append(err, fn(ctx, summary))
	}
	return err
}
