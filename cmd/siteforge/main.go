package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/siteforge/cmd/siteforge/commands"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("siteforge"),
		kong.Description("Static site generator with date, section and taxonomy archives."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(global, cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
