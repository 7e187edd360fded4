package site

import (
	"context"

	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

func stageLoad(_ context.Context, bs *BuildState) error {
	items, err := content.Load(bs.Snapshot)
	if err != nil {
		return err
	}
	bs.Items = items
	return plugin.RunCollection(bs.Hooks.AfterInitializeSingles, items)
}

// stageSetup parses every document. Documents that fail are dropped and
// reported as a warning; the rest of the site still builds.
func stageSetup(_ context.Context, bs *BuildState) error {
	env := content.Env{
		Converter: bs.converter,
		Hooks:     bs.Hooks,
		Logger:    bs.logger,
	}
	if bs.dates != nil {
		env.Dates = bs.dates
	}
	setupErr := bs.Items.Setup(env)
	bs.Report.Singles = len(bs.Items.Items)

	if err := plugin.RunCollection(bs.Hooks.AfterSetupSingles, bs.Items); err != nil {
		return err
	}
	if setupErr != nil {
		return Warn(StageSetup, setupErr)
	}
	return nil
}

// stageSort orders the collection, links siblings and indexes file ids.
func stageSort(_ context.Context, bs *BuildState) error {
	bs.Items.Sort()
	if err := plugin.RunCollection(bs.Hooks.AfterSortSingles, bs.Items); err != nil {
		return err
	}
	bs.Items.LinkSiblings()
	if err := bs.Items.IndexFileIDs(); err != nil {
		return err
	}
	bs.Report.Singles = len(bs.Items.Items)
	bs.logger.Debug("Singles ready", logfields.Count(len(bs.Items.Items)))
	return nil
}
