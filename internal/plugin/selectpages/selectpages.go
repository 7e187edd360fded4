// Package selectpages limits the documents of a serve session to a slice of
// the collection, so large sites preview quickly.
package selectpages

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

// Name is the plugin's configuration name.
const Name = "select-pages"

// Plugin is the select-pages plugin.
type Plugin struct {
	plugin.BasePlugin
}

// New returns the plugin.
func New() plugin.Plugin { return &Plugin{} }

// Metadata implements plugin.Plugin.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.TypeCollection,
		Description: "Restricts serve mode to a slice of the documents",
	}
}

// Validate implements plugin.Plugin.
func (p *Plugin) Validate(options map[string]any) error {
	for _, key := range []string{"start", "end", "step"} {
		switch v := options[key].(type) {
		case nil, int, int64, float64:
		default:
			return fmt.Errorf("option %s must be a number, got %T", key, v)
		}
	}
	if step, ok := options["step"].(int); ok && step < 0 {
		return fmt.Errorf("option step must not be negative")
	}
	return nil
}

// Attach implements plugin.Plugin. Outside serve mode, or without any of the
// start, end and step options, it attaches nothing.
func (p *Plugin) Attach(hooks *plugin.Hooks, pctx *plugin.Context) error {
	if pctx.Snapshot.Mode != config.ModeServe {
		return nil
	}
	start, hasStart := pctx.GetInt("start")
	end, hasEnd := pctx.GetInt("end")
	step, hasStep := pctx.GetInt("step")
	if !hasStart && !hasEnd && !hasStep {
		return nil
	}
	hooks.AfterInitializeSingles = append(hooks.AfterInitializeSingles, func(c *content.Collection) error {
		before := len(c.Items)
		c.Select(start, end, step)
		pctx.Logger.Info("Selected documents",
			logfields.Count(len(c.Items)),
			slog.Int("total", before),
			slog.Int("start", start),
			slog.Int("end", end),
			slog.Int("step", step))
		return nil
	})
	return nil
}
