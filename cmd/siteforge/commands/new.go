package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/site"
	"git.home.luguber.info/inful/siteforge/internal/theme"
)

var nowFunc = time.Now

// NewCmd implements the 'new' command.
type NewCmd struct {
	Type string `arg:"" help:"Post type of the new document"`
	Path string `arg:"" optional:"" help:"Destination, relative to the post type directory; strftime directives are expanded"`
}

func (n *NewCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.loadConfig(root.Config)
	if err != nil {
		return err
	}
	snap := cfg.Snapshot(config.ModeBuild, nowFunc())
	themes, err := theme.Load(snap, g.logger())
	if err != nil {
		return err
	}
	dest, err := site.NewDocument(snap, themes, n.Type, n.Path, nowFunc())
	if err != nil {
		return err
	}
	fmt.Println("created", dest)
	return nil
}
