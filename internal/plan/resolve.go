package plan

import (
	"fmt"
	"slices"

	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/manifest"
)

// Resolve turns a manifest into a build plan. With enableAll the candidates
// are every declared gadget, otherwise exactly the enable list; disable
// always wins, as does a definition's own disabled flag. Gadgets with
// neither scripts nor styles are dropped. Declaration order is preserved.
func Resolve(doc *manifest.Document) (*BuildPlan, error) {
	policy := doc.Workspace

	if policy.EnableAll && len(policy.Enable) > 0 {
		return nil, &gadgeterr.ConfigurationError{
			Reason: "workspace sets enableAll together with a non-empty enable list",
		}
	}
	for _, name := range policy.Enable {
		if _, ok := doc.Gadgets.Lookup(name); !ok {
			return nil, &gadgeterr.ConfigurationError{Gadget: name, Reason: "enabled in workspace but not declared"}
		}
	}
	for _, name := range policy.Disable {
		if _, ok := doc.Gadgets.Lookup(name); !ok {
			return nil, &gadgeterr.ConfigurationError{Gadget: name, Reason: "disabled in workspace but not declared"}
		}
	}

	var (
		gadgets []*Gadget
		skipped []Skip
		reasons = make(map[string]string)
	)
	for _, def := range doc.Gadgets {
		reason := ""
		switch {
		case slices.Contains(policy.Disable, def.Name):
			reason = ReasonDisabled
		case !policy.EnableAll && !slices.Contains(policy.Enable, def.Name):
			reason = ReasonNotEnabled
		case def.Disabled:
			reason = ReasonHardOff
		case len(def.Scripts) == 0 && len(def.Styles) == 0:
			reason = ReasonEmpty
		}
		if reason != "" {
			reasons[def.Name] = reason
			skipped = append(skipped, Skip{Name: def.Name, Reason: reason})
			continue
		}
		gadgets = append(gadgets, fromDefinition(def))
	}

	p := newPlan(gadgets, skipped)
	for _, g := range gadgets {
		for _, req := range g.Requires {
			if _, ok := p.Lookup(req); ok {
				continue
			}
			why, declared := reasons[req]
			if !declared {
				why = "not declared"
			}
			return nil, &gadgeterr.ConfigurationError{
				Gadget: g.Name,
				Reason: fmt.Sprintf("requires %q, which is not part of the build (%s)", req, why),
			}
		}
	}
	return p, nil
}

func fromDefinition(def *manifest.Definition) *Gadget {
	return &Gadget{
		Name:       def.Name,
		Dir:        def.Dir(),
		Requires:   slices.Clone(def.Requires),
		Scripts:    slices.Clone(def.Scripts),
		Styles:     slices.Clone(def.Styles),
		I18n:       slices.Clone(def.I18n),
		Conditions: def.ResourceLoader,
		Definition: def,
	}
}

// Without returns a new plan that drops the named gadgets and, transitively,
// every gadget that requires one of them. The second result lists the
// dependents removed on top of names, in plan order.
func (p *BuildPlan) Without(names ...string) (*BuildPlan, []string) {
	removed := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := p.index[n]; ok {
			removed[n] = true
		}
	}
	if len(removed) == 0 {
		return p, nil
	}

	for changed := true; changed; {
		changed = false
		for _, g := range p.gadgets {
			if removed[g.Name] {
				continue
			}
			for _, req := range g.Requires {
				if removed[req] {
					removed[g.Name] = true
					changed = true
					break
				}
			}
		}
	}

	var (
		kept     []*Gadget
		cascaded []string
		skipped  = slices.Clone(p.skipped)
	)
	for _, g := range p.gadgets {
		if !removed[g.Name] {
			kept = append(kept, g)
			continue
		}
		skipped = append(skipped, Skip{Name: g.Name, Reason: ReasonPruned})
		if !slices.Contains(names, g.Name) {
			cascaded = append(cascaded, g.Name)
		}
	}
	return newPlan(kept, skipped), cascaded
}
