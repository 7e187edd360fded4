package plugin

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// Factory creates a fresh plugin instance for one build.
type Factory func() Plugin

// Registry maps plugin names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a plugin factory under the name reported by its metadata.
// Returns an error if the name is taken or the metadata is invalid.
func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		return fmt.Errorf("cannot register nil plugin factory")
	}
	p := factory()
	if p == nil {
		return fmt.Errorf("plugin factory returned nil")
	}
	metadata := p.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[metadata.Name]; exists {
		return fmt.Errorf("plugin %s already registered", metadata.Name)
	}
	r.factories[metadata.Name] = factory
	r.order = append(r.order, metadata.Name)
	return nil
}

// MustRegister is Register for package initialization; it panics on error.
func (r *Registry) MustRegister(factory Factory) {
	if err := r.Register(factory); err != nil {
		panic(err)
	}
}

// New returns a fresh instance of the named plugin.
func (r *Registry) New(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	return factory(), nil
}

// Has checks if a plugin with the given name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[name]
	return ok
}

// Names returns the registered plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// Enabled is the set of plugins attached for one build.
type Enabled struct {
	Hooks    *Hooks
	Plugins  []Plugin
	Warnings []string
}

// Enable instantiates the configured plugins in order and attaches them to
// a new Hooks value. An unknown plugin name is a warning. The returned
// Enabled must be closed after the build.
func (r *Registry) Enable(specs config.Plugins, pctx *Context) (*Enabled, error) {
	en := &Enabled{Hooks: &Hooks{}}
	for _, spec := range specs {
		p, err := r.New(spec.Name)
		if err != nil {
			pctx.Logger.Warn("unknown plugin", logfields.Plugin(spec.Name))
			en.Warnings = append(en.Warnings, "unknown plugin "+spec.Name)
			continue
		}
		if err := p.Validate(spec.Options); err != nil {
			return en, NewError(spec.Name, "validate", err)
		}
		ctx := pctx.ForPlugin(spec.Name, spec.Options)
		if lc, ok := p.(Lifecycle); ok {
			if err := lc.Init(ctx); err != nil {
				return en, NewError(spec.Name, "init", err)
			}
		}
		en.Plugins = append(en.Plugins, p)
		if err := p.Attach(en.Hooks, ctx); err != nil {
			return en, NewError(spec.Name, "attach", err)
		}
		pctx.Logger.Debug("Plugin enabled", logfields.Plugin(spec.Name))
	}
	return en, nil
}

// Close runs Cleanup on every enabled plugin in reverse order.
func (e *Enabled) Close() error {
	var err error
	for _, p := range slices.Backward(e.Plugins) {
		if lc, ok := p.(Lifecycle); ok {
			if cerr := lc.Cleanup(); cerr != nil {
				err = multierr.Append(err, NewError(p.Metadata().Name, "cleanup", cerr))
			}
		}
	}
	return err
}
