// Package plugin provides the build hook points and the plugin registry.
//
// A plugin attaches handlers to Hooks when it is enabled for a build. The
// site generator calls every hook point at a fixed place in the pipeline;
// handlers run in the order their plugins were enabled.
package plugin

import (
	"fmt"
)

// Plugin is a build extension enabled through the plugins configuration list.
type Plugin interface {
	// Metadata returns the plugin's identity.
	Metadata() Metadata

	// Validate checks the plugin's options before it is attached.
	Validate(options map[string]any) error

	// Attach registers the plugin's handlers. It is called once per build.
	Attach(hooks *Hooks, pctx *Context) error
}

// Lifecycle extends Plugin with setup and teardown around a build.
type Lifecycle interface {
	Plugin

	// Init is called before Attach.
	Init(pctx *Context) error

	// Cleanup is called after the build, even when it failed.
	Cleanup() error
}

// Metadata describes a plugin.
type Metadata struct {
	// Name is the identifier used in the plugins configuration list.
	Name string

	Version string

	Type Type

	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m Metadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// BasePlugin provides default implementations for optional methods.
type BasePlugin struct{}

// Init is a no-op default implementation.
func (b *BasePlugin) Init(*Context) error {
	return nil
}

// Cleanup is a no-op default implementation.
func (b *BasePlugin) Cleanup() error {
	return nil
}

// Validate is a no-op default implementation that accepts any options.
func (b *BasePlugin) Validate(map[string]any) error {
	return nil
}
