package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/markdown"
)

func TestZeroHooksAreNoops(t *testing.T) {
	var h Hooks
	if err := RunCollection(h.AfterSetupSingles, nil); err != nil {
		t.Errorf("RunCollection() = %v", err)
	}
	if err := RunTree(h.AfterSetupArchives, nil); err != nil {
		t.Errorf("RunTree() = %v", err)
	}
	if doc, ok := h.OnGetContent(&content.Item{}, "doc"); ok || doc != "doc" {
		t.Errorf("OnGetContent() = %q, %v; want the document back unhandled", doc, ok)
	}
	var nilHooks *Hooks
	if doc, ok := nilHooks.OnGetContent(&content.Item{}, "doc"); ok || doc != "doc" {
		t.Errorf("nil OnGetContent() = %q, %v", doc, ok)
	}
	out, err := RunRender(h.AfterRenderHTML, nil, "<p>x</p>")
	if err != nil || out != "<p>x</p>" {
		t.Errorf("RunRender() = %q, %v", out, err)
	}
	if err := h.End(context.Background(), BuildSummary{}); err != nil {
		t.Errorf("End() = %v", err)
	}
}

func TestRenderHooksChain(t *testing.T) {
	hooks := []RenderHook{
		func(_ *content.Item, s string) (string, error) { return s + "a", nil },
		func(_ *content.Item, s string) (string, error) { return strings.ToUpper(s), nil },
	}
	out, err := RunRender(hooks, nil, "x")
	if err != nil {
		t.Fatal(err)
	}
	if out != "XA" {
		t.Errorf("RunRender() = %q, want XA", out)
	}
}

func TestFirstContentHandlerWins(t *testing.T) {
	h := &Hooks{GetContent: []ContentHandler{
		func(item *content.Item, doc string) (string, bool) { return "", false },
		func(item *content.Item, doc string) (string, bool) { return "<p>" + doc + "</p>", true },
		func(item *content.Item, doc string) (string, bool) { return "late", true },
	}}
	out, ok := h.OnGetContent(&content.Item{}, "x")
	if !ok || out != "<p>x</p>" {
		t.Errorf("OnGetContent() = %q, %v", out, ok)
	}
}

func TestEndRunsEveryHandler(t *testing.T) {
	calls := 0
	h := &Hooks{OnEnd: []EndHook{
		func(context.Context, BuildSummary) error { calls++; return errors.New("first") },
		func(context.Context, BuildSummary) error { calls++; return errors.New("second") },
	}}
	err := h.End(context.Background(), BuildSummary{BuildID: "b"})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("combined errors = %d, want 2", n)
	}
}

func TestSetupWithEmptyHooksKeepsBody(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "docs", "post", "a.md")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("---\ndate: 2024-01-02\n---\nHello *world*"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(nil, base)
	if err != nil {
		t.Fatal(err)
	}
	snap := cfg.Snapshot(config.ModeBuild, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))

	c, err := content.Load(snap)
	if err != nil {
		t.Fatal(err)
	}
	env := content.Env{Snapshot: snap, Converter: markdown.New(snap.Markdown), Hooks: &Hooks{}}
	if err := c.Setup(env); err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(c.Items))
	}
	item := c.Items[0]
	if !strings.Contains(item.Content, "<em>world</em>") {
		t.Errorf("Content = %q, want rendered markdown", item.Content)
	}
	if !strings.Contains(item.Summary, "Hello") {
		t.Errorf("Summary = %q, want text from the body", item.Summary)
	}
}
