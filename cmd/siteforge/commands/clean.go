package commands

import (
	"fmt"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/site"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Target string `arg:"" optional:"" enum:"public,cache,all" default:"public" help:"What to remove: public, cache or all"`
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.loadConfig(root.Config)
	if err != nil {
		return err
	}
	removed, err := site.Clean(cfg.Snapshot(config.ModeBuild, nowFunc()), c.Target)
	for _, p := range removed {
		fmt.Println("removed", p)
	}
	return err
}
