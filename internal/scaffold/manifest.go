package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gadgetry/gadgetc/internal/manifest"
	"go.yaml.in/yaml/v3"
)

// AddToManifest appends def to the gadgets mapping of the manifest at path.
// Unless the workspace enables every gadget, the name is also appended to
// workspace.enable so the next build picks it up. The rest of the document,
// comments included, is preserved.
func AddToManifest(path string, def *manifest.Definition) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest %s: top level must be a mapping", path)
	}

	gadgets := mappingValue(root, "gadgets")
	if gadgets.Kind != yaml.MappingNode {
		// "gadgets:" with no value decodes as null.
		*gadgets = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	if existing := lookup(gadgets, def.Name); existing != nil {
		return fmt.Errorf("gadget %q already exists in %s", def.Name, path)
	}

	var value yaml.Node
	if err := value.Encode(def); err != nil {
		return fmt.Errorf("encoding gadget %q: %w", def.Name, err)
	}
	gadgets.Content = append(gadgets.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: def.Name},
		&value,
	)

	workspace := mappingValue(root, "workspace")
	if workspace.Kind != yaml.MappingNode {
		*workspace = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	if enableAll := lookup(workspace, "enableAll"); enableAll == nil || enableAll.Value != "true" {
		enable := mappingValue(workspace, "enable")
		if enable.Kind != yaml.SequenceNode {
			*enable = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		}
		enable.Content = append(enable.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: def.Name})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// mappingValue returns the value node for key, appending an empty one when
// the key is absent.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if v := lookup(m, key); v != nil {
		return v
	}
	v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	return v
}
