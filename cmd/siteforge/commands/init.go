package commands

import (
	"fmt"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `arg:"" optional:"" help:"Project directory (defaults to the config file's directory)" type:"path"`
	Force bool   `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	dir := i.Dir
	if dir == "" {
		dir = projectDir(root.Config)
	}
	fmt.Println("Initializing siteforge project in", dir)
	if err := config.Init(dir, i.Force); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "initialization failed").
			WithContext("dir", dir).Build()
	}
	fmt.Println("initialized successfully")
	return nil
}
