package plan

import "github.com/gadgetry/gadgetc/internal/manifest"

// Gadget is a gadget selected for the build.
type Gadget struct {
	Name       string
	Dir        string // output path segment and source subdirectory
	Requires   []string
	Scripts    []string
	Styles     []string
	I18n       []string
	Conditions manifest.Conditions
	Definition *manifest.Definition
}

// HasI18n reports whether the gadget ships localization files.
func (g *Gadget) HasI18n() bool { return len(g.I18n) > 0 }

// Skip records a declared gadget left out of the plan and why.
type Skip struct {
	Name   string
	Reason string
}

// Skip reasons.
const (
	ReasonNotEnabled = "not enabled by workspace"
	ReasonDisabled   = "disabled by workspace"
	ReasonHardOff    = "disabled: true"
	ReasonEmpty      = "no scripts or styles"
	ReasonPruned     = "removed after a build failure"
)

// BuildPlan is the resolved, ordered sequence of gadgets to build.
// It is not modified after Resolve returns; Without returns a new plan.
type BuildPlan struct {
	gadgets []*Gadget
	index   map[string]int
	skipped []Skip
}

func newPlan(gadgets []*Gadget, skipped []Skip) *BuildPlan {
	p := &BuildPlan{
		gadgets: gadgets,
		index:   make(map[string]int, len(gadgets)),
		skipped: skipped,
	}
	for i, g := range gadgets {
		p.index[g.Name] = i
	}
	return p
}

// Gadgets returns the planned gadgets in manifest declaration order.
func (p *BuildPlan) Gadgets() []*Gadget {
	out := make([]*Gadget, len(p.gadgets))
	copy(out, p.gadgets)
	return out
}

// Len returns the number of planned gadgets.
func (p *BuildPlan) Len() int { return len(p.gadgets) }

// Names returns the planned gadget names in order.
func (p *BuildPlan) Names() []string {
	names := make([]string, len(p.gadgets))
	for i, g := range p.gadgets {
		names[i] = g.Name
	}
	return names
}

// Lookup returns the planned gadget with the given name.
func (p *BuildPlan) Lookup(name string) (*Gadget, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.gadgets[i], true
}

// Skipped returns the declared gadgets that were left out, in declaration order.
func (p *BuildPlan) Skipped() []Skip {
	out := make([]Skip, len(p.skipped))
	copy(out, p.skipped)
	return out
}
