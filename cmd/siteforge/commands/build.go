package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Clean bool `help:"Empty the public directory before writing"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := g.loadConfig(root.Config)
	if err != nil {
		return err
	}
	report, err := g.newGenerator(cfg, nil).Build(ctx, site.BuildOptions{Mode: config.ModeBuild, Clean: b.Clean})
	fmt.Println(report.Summary())
	return err
}
