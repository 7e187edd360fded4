package site

import (
	"context"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/output"
	"git.home.luguber.info/inful/siteforge/internal/permalink"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// stageURLs resolves item and archive URLs and claims every destination the
// build will write. Nothing is written before all claims succeed.
func stageURLs(_ context.Context, bs *BuildState) error {
	var chains permalink.ArchiveChains
	if bs.Tree != nil {
		chains = bs.Tree
	}
	if err := bs.Items.ResolveURLs(chains); err != nil {
		return err
	}
	if err := bs.claimSingles(); err != nil {
		return err
	}
	if err := plugin.RunCollection(bs.Hooks.AfterUpdateSinglesURL, bs.Items); err != nil {
		return err
	}

	if bs.Tree != nil {
		if err := bs.Tree.ResolveURLs(); err != nil {
			return err
		}
		if err := bs.Tree.Paginate(bs.Dests); err != nil {
			return err
		}
		if err := plugin.RunTree(bs.Hooks.AfterUpdateArchivesURL, bs.Tree); err != nil {
			return err
		}
	}

	if bs.Snapshot.Mode != config.ModeDraft {
		bs.Extras = bs.extraPages()
		for _, p := range bs.Extras {
			if err := bs.Dests.Claim(p.DestPath, "template "+p.Template); err != nil {
				return err
			}
		}
	}
	return bs.claimAssets()
}

// claimSingles claims item pages, alias pages and copied images.
func (bs *BuildState) claimSingles() error {
	seenThumb := map[string]bool{}
	for _, item := range bs.Items.Items {
		if item.ShouldOutput {
			if err := bs.Dests.Claim(item.DestPath, item.AbsSrcPath); err != nil {
				return err
			}
		}
		for _, a := range output.Aliases(item) {
			if err := bs.Dests.Claim(a.DestPath, a.Owner); err != nil {
				return err
			}
			bs.Aliases = append(bs.Aliases, a)
		}
		if img := item.Image; img != nil && img.NewPath != "" {
			if err := bs.Dests.Claim(img.NewPath, img.OldPath); err != nil {
				return err
			}
			if !seenThumb[img.NewPath] {
				seenThumb[img.NewPath] = true
				bs.Thumbs = append(bs.Thumbs, output.Asset{Src: img.OldPath, Dest: img.NewPath})
			}
		}
	}
	return nil
}

// claimAssets lists and claims the static directory and theme assets.
func (bs *BuildState) claimAssets() error {
	static, err := output.ListTree(bs.Snapshot.Dirs.Static, "")
	if err != nil {
		return err
	}
	themeAssets, err := bs.Themes.Assets()
	if err != nil {
		return err
	}
	bs.Assets = static
	for _, a := range themeAssets {
		bs.Assets = append(bs.Assets, output.Asset{Src: a.Src, Dest: a.Dest})
	}
	return output.ClaimAssets(bs.Dests, bs.Assets)
}
