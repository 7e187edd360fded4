package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PostTypes is the post_type table in declaration order.
//
// In YAML it is either a mapping (name: settings) or a list whose items are a
// bare name or a single-key mapping. Order is preserved in both forms.
type PostTypes []PostType

// Taxonomies is the taxonomy table in declaration order. Each value is either
// a list of terms or a mapping of taxonomy settings holding a terms key.
type Taxonomies []Taxonomy

// Terms is an ordered list of taxonomy terms. It accepts a list of names, a
// list of single-key mappings (name: {slug, parent}) or a mapping.
type Terms []Term

// Plugins is the ordered list of enabled plugins. Items are a bare name or a
// single-key mapping of name to options.
type Plugins []PluginSpec

// eachNamedEntry walks the ordered "name: value" forms accepted by the tables
// above. value is nil when an entry has no settings.
func eachNamedEntry(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if err := fn(node.Content[i].Value, valueOrNil(node.Content[i+1])); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				if err := fn(item.Value, nil); err != nil {
					return err
				}
			case yaml.MappingNode:
				if err := eachNamedEntry(item, fn); err != nil {
					return err
				}
			default:
				return fmt.Errorf("line %d: expected name or single-key mapping", item.Line)
			}
		}
	case yaml.ScalarNode:
		if isNull(node) {
			return nil
		}
		return fn(node.Value, nil)
	default:
		return fmt.Errorf("line %d: expected mapping or list", node.Line)
	}
	return nil
}

// flatURLAlias is the hyphenated spelling of flat_url, accepted as well.
const flatURLAlias = "flat-url"

// takeFlatURL moves a flat-url entry out of extras into flat.
func takeFlatURL(extras map[string]any, flat *bool) error {
	v, ok := extras[flatURLAlias]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%s must be a boolean, got %v", flatURLAlias, v)
	}
	delete(extras, flatURLAlias)
	*flat = b
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && (n.Tag == "!!null" || n.Value == "")
}

func valueOrNil(n *yaml.Node) *yaml.Node {
	if n == nil || isNull(n) {
		return nil
	}
	return n
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PostTypes) UnmarshalYAML(node *yaml.Node) error {
	var out PostTypes
	err := eachNamedEntry(node, func(name string, value *yaml.Node) error {
		pt := NewPostType(name)
		if value != nil {
			if err := value.Decode(&pt); err != nil {
				return fmt.Errorf("post_type %s: %w", name, err)
			}
			if err := takeFlatURL(pt.Extras, &pt.FlatURL); err != nil {
				return fmt.Errorf("post_type %s: %w", name, err)
			}
			pt.Name = name
		}
		out = append(out, pt)
		return nil
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalYAML writes the list-of-single-key-mappings form.
func (p PostTypes) MarshalYAML() (any, error) {
	out := make([]map[string]PostType, 0, len(p))
	for _, pt := range p {
		out = append(out, map[string]PostType{pt.Name: pt})
	}
	return out, nil
}

// Get returns the post type named name.
func (p PostTypes) Get(name string) (PostType, bool) {
	if i := p.Index(name); i >= 0 {
		return p[i], true
	}
	return PostType{}, false
}

// Index returns the registration position of name, or -1.
func (p PostTypes) Index(name string) int {
	for i := range p {
		if p[i].Name == name {
			return i
		}
	}
	return -1
}

// Names returns the post type names in registration order.
func (p PostTypes) Names() []string {
	names := make([]string, len(p))
	for i := range p {
		names[i] = p[i].Name
	}
	return names
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Taxonomies) UnmarshalYAML(node *yaml.Node) error {
	var out Taxonomies
	err := eachNamedEntry(node, func(name string, value *yaml.Node) error {
		tax := NewTaxonomy(name)
		if value != nil {
			var err error
			if value.Kind == yaml.SequenceNode {
				err = value.Decode(&tax.Terms)
			} else {
				err = value.Decode(&tax)
			}
			if err == nil {
				err = takeFlatURL(tax.Extras, &tax.FlatURL)
			}
			if err != nil {
				return fmt.Errorf("taxonomy %s: %w", name, err)
			}
			tax.Name = name
		}
		out = append(out, tax)
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

// MarshalYAML writes the list-of-single-key-mappings form.
func (t Taxonomies) MarshalYAML() (any, error) {
	out := make([]map[string]Taxonomy, 0, len(t))
	for _, tax := range t {
		out = append(out, map[string]Taxonomy{tax.Name: tax})
	}
	return out, nil
}

// Get returns the taxonomy named name.
func (t Taxonomies) Get(name string) (Taxonomy, bool) {
	for i := range t {
		if t[i].Name == name {
			return t[i], true
		}
	}
	return Taxonomy{}, false
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Terms) UnmarshalYAML(node *yaml.Node) error {
	var out Terms
	err := eachNamedEntry(node, func(name string, value *yaml.Node) error {
		term := Term{Name: name}
		if value != nil {
			if err := value.Decode(&term); err != nil {
				return fmt.Errorf("term %s: %w", name, err)
			}
			term.Name = name
		}
		out = append(out, term)
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

// MarshalYAML writes bare names for terms without settings.
func (t Terms) MarshalYAML() (any, error) {
	out := make([]any, 0, len(t))
	for _, term := range t {
		if term.Slug == "" && term.Parent == "" {
			out = append(out, term.Name)
			continue
		}
		out = append(out, map[string]Term{term.Name: term})
	}
	return out, nil
}

// Get returns the term named name.
func (t Terms) Get(name string) (Term, bool) {
	for i := range t {
		if t[i].Name == name {
			return t[i], true
		}
	}
	return Term{}, false
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Plugins) UnmarshalYAML(node *yaml.Node) error {
	var out Plugins
	err := eachNamedEntry(node, func(name string, value *yaml.Node) error {
		spec := PluginSpec{Name: name, Options: map[string]any{}}
		if value != nil {
			if err := value.Decode(&spec.Options); err != nil {
				return fmt.Errorf("plugin %s: %w", name, err)
			}
		}
		out = append(out, spec)
		return nil
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalYAML writes bare names for plugins without options.
func (p Plugins) MarshalYAML() (any, error) {
	out := make([]any, 0, len(p))
	for _, spec := range p {
		if len(spec.Options) == 0 {
			out = append(out, spec.Name)
			continue
		}
		out = append(out, map[string]map[string]any{spec.Name: spec.Options})
	}
	return out, nil
}

// UnmarshalYAML accepts either a bare theme name or {name, child}.
func (t *ThemeConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Name = node.Value
		return nil
	}
	type rawTheme ThemeConfig
	return node.Decode((*rawTheme)(t))
}
