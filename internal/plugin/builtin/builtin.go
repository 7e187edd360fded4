// Package builtin registers the plugins shipped with siteforge.
package builtin

import (
	"git.home.luguber.info/inful/siteforge/internal/plugin"
	"git.home.luguber.info/inful/siteforge/internal/plugin/autop"
	"git.home.luguber.info/inful/siteforge/internal/plugin/backlink"
	"git.home.luguber.info/inful/siteforge/internal/plugin/notify"
	"git.home.luguber.info/inful/siteforge/internal/plugin/selectpages"
)

// Registry returns a registry holding every built-in plugin.
func Registry() *plugin.Registry {
	r := plugin.NewRegistry()
	r.MustRegister(autop.New)
	r.MustRegister(selectpages.New)
	r.MustRegister(backlink.New)
	r.MustRegister(notify.New)
	return r
}
