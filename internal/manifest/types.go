package manifest

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Document is a decoded gadget manifest.
type Document struct {
	Workspace WorkspacePolicy `yaml:"workspace" json:"workspace"`
	Gadgets   Gadgets         `yaml:"gadgets" json:"gadgets"`
}

// WorkspacePolicy governs which declared gadgets participate in a build.
type WorkspacePolicy struct {
	EnableAll bool     `yaml:"enableAll,omitempty" json:"enableAll,omitempty"`
	Enable    []string `yaml:"enable,omitempty" json:"enable,omitempty"`
	Disable   []string `yaml:"disable,omitempty" json:"disable,omitempty"`
}

// Definition is a single gadget as declared in the manifest.
type Definition struct {
	// Name is the mapping key the gadget was declared under.
	Name string `yaml:"-" json:"-"`

	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Authors     []string `yaml:"authors,omitempty" json:"authors,omitempty"`
	Links       []string `yaml:"links,omitempty" json:"links,omitempty"`
	Version     string   `yaml:"version,omitempty" json:"version,omitempty"`

	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Scripts  []string `yaml:"scripts,omitempty" json:"scripts,omitempty"`
	Styles   []string `yaml:"styles,omitempty" json:"styles,omitempty"`
	I18n     []string `yaml:"i18n,omitempty" json:"i18n,omitempty"`
	Subdir   string   `yaml:"subdir,omitempty" json:"subdir,omitempty"`
	Disabled bool     `yaml:"disabled,omitempty" json:"disabled,omitempty"`

	ResourceLoader Conditions `yaml:"resourceLoader,omitempty" json:"resourceLoader,omitempty"`
}

// Dir returns the gadget's output path segment, defaulting to its name.
func (d *Definition) Dir() string {
	if d.Subdir != "" {
		return d.Subdir
	}
	return d.Name
}

// Conditions are the resourceLoader fields that gate client-side loading.
// Dependencies lists host modules the gadget needs in addition to its
// requires; the other fields are matched against the client's context.
type Conditions struct {
	Dependencies  Condition `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Rights        Condition `yaml:"rights,omitempty" json:"rights,omitempty"`
	Skins         Condition `yaml:"skins,omitempty" json:"skins,omitempty"`
	Actions       Condition `yaml:"actions,omitempty" json:"actions,omitempty"`
	Categories    Condition `yaml:"categories,omitempty" json:"categories,omitempty"`
	Namespaces    Condition `yaml:"namespaces,omitempty" json:"namespaces,omitempty"`
	ContentModels Condition `yaml:"contentModels,omitempty" json:"contentModels,omitempty"`
}

// Condition is the normalized form of a string | []string | null field: an
// ordered set of non-empty strings. A nil Condition imposes no constraint.
type Condition []string

// NewCondition trims, drops empty values and removes duplicates while keeping
// first-seen order. It returns nil when nothing remains.
func NewCondition(values ...string) Condition {
	var out Condition
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Present reports whether the condition constrains anything.
func (c Condition) Present() bool { return len(c) > 0 }

// UnmarshalYAML accepts a scalar, a sequence of scalars, or null.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*c = nil
			return nil
		}
		*c = NewCondition(node.Value)
		return nil
	case yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.AliasNode && item.Alias != nil {
				item = item.Alias
			}
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: condition list items must be scalars", item.Line)
			}
			values = append(values, item.Value)
		}
		*c = NewCondition(values...)
		return nil
	default:
		return fmt.Errorf("line %d: condition must be a string, a list of strings, or null", node.Line)
	}
}

// Gadgets is the ordered list of gadget definitions, in manifest
// declaration order.
type Gadgets []*Definition

// UnmarshalYAML decodes a mapping of name to definition, keeping the order
// in which names were declared.
func (g *Gadgets) UnmarshalYAML(node *yaml.Node) error {
	if node.ShortTag() == "!!null" {
		*g = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: gadgets must be a mapping of name to definition", node.Line)
	}

	seen := make(map[string]bool, len(node.Content)/2)
	out := make(Gadgets, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value
		if seen[name] {
			return fmt.Errorf("line %d: gadget %q declared more than once", key.Line, name)
		}
		seen[name] = true

		def := &Definition{}
		if value.ShortTag() != "!!null" {
			if err := value.Decode(def); err != nil {
				return fmt.Errorf("gadget %q: %w", name, err)
			}
		}
		def.Name = name
		out = append(out, def)
	}
	*g = out
	return nil
}

// Lookup returns the definition declared under name.
func (g Gadgets) Lookup(name string) (*Definition, bool) {
	for _, d := range g {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Names returns gadget names in declaration order.
func (g Gadgets) Names() []string {
	names := make([]string, len(g))
	for i, d := range g {
		names[i] = d.Name
	}
	return names
}
