package site

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/siteforge/internal/archive"
	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
	"git.home.luguber.info/inful/siteforge/internal/theme"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// DraftTemplate is tried first when previewing a single document.
const DraftTemplate = "draft.html"

// stageRender renders singles across a worker pool, then archive pages and
// extra pages sequentially.
func stageRender(ctx context.Context, bs *BuildState) error {
	if err := plugin.RunCollection(bs.Hooks.BeforeUpdateSinglesHTML, bs.Items); err != nil {
		return err
	}
	if err := bs.renderSingles(ctx); err != nil {
		return err
	}
	if err := plugin.RunCollection(bs.Hooks.AfterUpdateSinglesHTML, bs.Items); err != nil {
		return err
	}

	if bs.Tree != nil {
		if err := plugin.RunTree(bs.Hooks.BeforeUpdateArchivesHTML, bs.Tree); err != nil {
			return err
		}
		if err := bs.renderArchives(); err != nil {
			return err
		}
		if err := plugin.RunTree(bs.Hooks.AfterUpdateArchivesHTML, bs.Tree); err != nil {
			return err
		}
	}

	for i := range bs.Extras {
		if err := bs.renderExtra(&bs.Extras[i]); err != nil {
			return err
		}
	}
	bs.Report.Pages[metrics.PageExtra] = len(bs.Extras)
	bs.recorder.AddPagesRendered(metrics.PageExtra, len(bs.Extras))
	return nil
}

// SingleTemplates lists the templates tried for item, most specific first.
func SingleTemplates(snap config.Snapshot, item *content.Item) []string {
	var out []string
	if snap.Mode == config.ModeDraft {
		out = append(out, DraftTemplate)
	}
	if name, ok := item.MetaString("template"); ok && name != "" {
		out = append(out, name)
	}
	return append(out, "single-"+item.PostType+".html", "single.html", theme.MainTemplate)
}

func (bs *BuildState) renderSingles(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	n := 0
	for _, item := range bs.Items.Items {
		if !item.ShouldRender {
			continue
		}
		n++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return bs.renderSingle(item)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	bs.Report.Pages[metrics.PageSingle] = n
	bs.recorder.AddPagesRendered(metrics.PageSingle, n)
	return nil
}

// renderSingle only mutates item, so it is safe to run concurrently.
func (bs *BuildState) renderSingle(item *content.Item) error {
	body, err := plugin.RunRender(bs.Hooks.BeforeRenderHTML, item, item.Content)
	if err != nil {
		return err
	}
	item.Content = body

	name := bs.Themes.Lookup(SingleTemplates(bs.Snapshot, item))
	data := bs.data(item.Title)
	data.Single = item
	out, err := bs.Themes.Render(name, data)
	if err != nil {
		return err
	}
	html, err := plugin.RunRender(bs.Hooks.AfterRenderHTML, item, string(out))
	if err != nil {
		return err
	}
	item.HTML = html
	bs.logger.Debug("Rendered single", logfields.Path(item.ID), logfields.Template(name))
	return nil
}

func (bs *BuildState) renderArchives() error {
	pages := bs.Tree.Pages()
	for _, page := range pages {
		n := page.Node
		name := bs.Themes.Lookup(archive.TemplateCandidates(n))
		data := bs.data(n.Title)
		data.Archive = n
		data.Page = page
		data.Paginator = page.Paginator
		data.Items = page.Items
		out, err := bs.Themes.Render(name, data)
		if err != nil {
			return err
		}
		page.HTML = out
	}
	bs.Report.Pages[metrics.PageArchive] = len(pages)
	bs.recorder.AddPagesRendered(metrics.PageArchive, len(pages))
	return nil
}

func (bs *BuildState) renderExtra(p *ExtraPage) error {
	data := bs.data(bs.Snapshot.Site.SiteName)
	data.Extra = p.Template
	out, err := bs.Themes.Render(p.Template, data)
	if err != nil {
		return err
	}
	p.HTML = out
	return nil
}

// data returns the template data shared by every page of the build.
func (bs *BuildState) data(title string) *theme.Data {
	home := "/"
	if bs.Snapshot.UseAbsURL {
		home = urlpath.AbsURL(bs.Snapshot.Site.SiteURL, "/")
	}
	return &theme.Data{
		Site:       bs.Snapshot.Site,
		Theme:      bs.Themes.Config,
		Config:     bs.Snapshot.Extras,
		BuildID:    bs.BuildID,
		Mode:       bs.Snapshot.Mode,
		Title:      title,
		Home:       home,
		Collection: bs.Items,
		Tree:       bs.Tree,
	}
}
