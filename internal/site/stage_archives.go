package site

import (
	"context"

	"git.home.luguber.info/inful/siteforge/internal/archive"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// stageArchives classifies the collection into the archive tree.
func stageArchives(_ context.Context, bs *BuildState) error {
	bs.Tree = archive.Build(bs.Snapshot, bs.Items, bs.logger)
	for _, w := range bs.Tree.Warnings {
		bs.Report.Warn(w)
	}
	bs.Report.ArchiveNodes = len(bs.Tree.Nodes())
	bs.recorder.SetArchiveNodes(bs.Report.ArchiveNodes)
	return plugin.RunTree(bs.Hooks.AfterSetupArchives, bs.Tree)
}
