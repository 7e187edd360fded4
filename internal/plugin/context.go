package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// Context gives a plugin its configuration and the build it runs in.
type Context struct {
	// Context bounds blocking plugin work such as network publishing.
	Context context.Context

	Logger *slog.Logger

	Snapshot config.Snapshot

	// Options is the plugin's entry in the plugins configuration list.
	Options map[string]any

	// BuildID uniquely identifies this build.
	BuildID string
}

// NewContext creates a plugin context for one build.
func NewContext(ctx context.Context, logger *slog.Logger, snap config.Snapshot, buildID string) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Context:  ctx,
		Logger:   logger,
		Snapshot: snap,
		Options:  map[string]any{},
		BuildID:  buildID,
	}
}

// ForPlugin returns a copy of the context carrying the options and logger of
// one plugin.
func (pc *Context) ForPlugin(name string, options map[string]any) *Context {
	cp := *pc
	cp.Logger = pc.Logger.With(logfields.Plugin(name))
	cp.Options = options
	if cp.Options == nil {
		cp.Options = map[string]any{}
	}
	return &cp
}

// GetString returns a string option, or def when unset.
func (pc *Context) GetString(key, def string) string {
	switch v := pc.Options[key].(type) {
	case nil:
		return def
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// GetBool returns a boolean option, or def when unset or not a boolean.
func (pc *Context) GetBool(key string, def bool) bool {
	if v, ok := pc.Options[key].(bool); ok {
		return v
	}
	return def
}

// GetInt returns an integer option and whether it was set.
func (pc *Context) GetInt(key string) (int, bool) {
	switch v := pc.Options[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
