package site

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/siteforge/internal/buildcache"
	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/gitdates"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/markdown"
	"git.home.luguber.info/inful/siteforge/internal/output"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
	"git.home.luguber.info/inful/siteforge/internal/theme"
)

// HomeTemplate is the theme template rendered to the site root.
const HomeTemplate = "home.html"

// stagePrepare loads the theme, resolves post types and opens the build
// collaborators: cache, writer, git dates and plugins.
func stagePrepare(ctx context.Context, bs *BuildState) error {
	themes, err := theme.Load(bs.Snapshot, bs.logger)
	if err != nil {
		return err
	}
	bs.Themes = themes
	for _, w := range themes.Warnings {
		bs.Report.Warn(w)
	}

	pts := ResolvePostTypes(bs.Snapshot, themes.Exists(HomeTemplate), bs.logger)
	if len(pts) == 0 && bs.Snapshot.Mode == config.ModeDraft {
		pts = bs.Snapshot.PostTypes
	}
	bs.Snapshot = bs.Snapshot.WithPostTypes(pts)

	var previous map[string]string
	if bs.Snapshot.Cache.Enabled && bs.Snapshot.Mode == config.ModeBuild {
		previous = bs.openCache(ctx)
	}
	bs.Writer = output.NewWriter(bs.Snapshot.Dirs.Public, previous, bs.logger)
	bs.Dests = output.NewDestTable(bs.recorder)
	bs.converter = markdown.New(bs.Snapshot.Markdown)

	if bs.Snapshot.GitDates {
		dates, err := gitdates.Open(bs.Snapshot.Dirs.Docs)
		if err != nil {
			bs.warn("git dates unavailable", logfields.Error(err))
		} else {
			bs.dates = dates
		}
	}

	pctx := plugin.NewContext(ctx, bs.logger, bs.Snapshot, bs.BuildID)
	enabled, err := bs.registry.Enable(bs.Snapshot.Plugins, pctx)
	if enabled != nil {
		bs.Plugins = enabled
		bs.Hooks = enabled.Hooks
		for _, w := range enabled.Warnings {
			bs.Report.Warn(w)
		}
	}
	return err
}

// openCache opens the build cache and returns the fingerprints of the last
// build. A cache that cannot be opened only costs the unchanged-file skip.
func (bs *BuildState) openCache(ctx context.Context) map[string]string {
	p := bs.Snapshot.Cache.File
	if !filepath.IsAbs(p) {
		p = filepath.Join(bs.Snapshot.Dirs.Cache, p)
	}
	store, err := buildcache.Open(ctx, p)
	if err != nil {
		bs.warn("build cache unavailable", logfields.Path(p), logfields.Error(err))
		return nil
	}
	bs.cache = store
	prev, err := store.Fingerprints(ctx)
	if err != nil {
		bs.warn("build cache unreadable", logfields.Path(p), logfields.Error(err))
		return nil
	}
	bs.logger.Debug("Loaded output fingerprints", slog.Int("count", len(prev)))
	return prev
}
