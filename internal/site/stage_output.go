package site

import (
	"context"
	"os"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
	"git.home.luguber.info/inful/siteforge/internal/output"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// stageOutput writes every claimed destination and, in build mode, removes
// files the previous build produced that this one did not.
func stageOutput(ctx context.Context, bs *BuildState) error {
	public := bs.Snapshot.Dirs.Public
	if bs.Options.Clean {
		if err := output.Clean(public); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(public, 0o755); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to create public directory").
			WithContext("path", public).Build()
	}

	if err := bs.writeSingles(); err != nil {
		return err
	}
	if err := plugin.RunOutput(bs.Hooks.AfterOutputSingles, public); err != nil {
		return err
	}

	if bs.Tree != nil {
		for _, page := range bs.Tree.Pages() {
			if !page.Node.ShouldOutput {
				continue
			}
			if err := bs.Writer.Write(page.DestPath, page.HTML); err != nil {
				return err
			}
		}
		if err := plugin.RunOutput(bs.Hooks.AfterOutputArchives, public); err != nil {
			return err
		}
	}

	for _, p := range bs.Extras {
		if err := bs.Writer.Write(p.DestPath, p.HTML); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bs.Writer.CopyAssets(bs.Assets); err != nil {
		return err
	}
	if err := plugin.RunOutput(bs.Hooks.AfterOutputSite, public); err != nil {
		return err
	}

	if bs.Snapshot.Mode == config.ModeBuild {
		removed, err := bs.Writer.PruneStale()
		bs.Report.FilesRemoved = len(removed)
		if err != nil {
			return Warn(StageOutput, err)
		}
		if len(removed) > 0 {
			bs.logger.Info("Removed stale outputs", logfields.Count(len(removed)))
		}
	}
	return nil
}

func (bs *BuildState) writeSingles() error {
	for _, item := range bs.Items.Items {
		if !item.ShouldOutput {
			continue
		}
		if err := bs.Writer.Write(item.DestPath, []byte(item.HTML)); err != nil {
			return err
		}
	}
	for _, a := range bs.Aliases {
		if err := bs.Writer.Write(a.DestPath, output.AliasPage(a.Target)); err != nil {
			return err
		}
	}
	bs.Report.Pages[metrics.PageAlias] = len(bs.Aliases)
	bs.recorder.AddPagesRendered(metrics.PageAlias, len(bs.Aliases))
	return bs.Writer.CopyAssets(bs.Thumbs)
}
