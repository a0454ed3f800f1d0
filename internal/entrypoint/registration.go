package entrypoint

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/dag"
	"github.com/gadgetry/gadgetc/internal/filemap"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/i18n"
	"github.com/gadgetry/gadgetc/internal/plan"
	"github.com/gadgetry/gadgetc/internal/wire"
)

// Mode selects which artifacts the loader points at.
type Mode int

const (
	// Bundled points at one wire artifact per gadget.
	Bundled Mode = iota
	// Unbundled points at the raw per-entry compiler output.
	Unbundled
)

func (m Mode) String() string {
	if m == Unbundled {
		return "unbundled"
	}
	return "bundled"
}

// Registration describes one gadget to the host module system.
type Registration struct {
	Gadget string
	Name   string // host module name
	// Dependencies are the module names of required gadgets followed by
	// the extra host modules from resourceLoader.dependencies.
	Dependencies []string
	Guard        Guard
	Scripts      []string // URLs, fetched in order
	Styles       []string // URLs
	I18n         *Messages
}

// Messages locates a gadget's message files.
type Messages struct {
	Key       string   // key passed to mw.libs[ns].i18n.use
	BaseURL   string   // URL prefix; the language code and ".json" follow
	Languages []string // in declaration order
}

// Option adjusts how registrations are derived.
type Option func(*options)

type options struct {
	styled func(g *plan.Gadget) bool
}

// WithStyled overrides which gadgets get a stylesheet URL in unbundled
// mode. By default that is every gadget that declares styles.
func WithStyled(styled func(g *plan.Gadget) bool) Option {
	return func(o *options) { o.styled = styled }
}

// Registrations derives the registrations of p in dependency order.
func Registrations(cfg *config.Build, p *plan.BuildPlan, mode Mode, opts ...Option) ([]Registration, error) {
	o := options{styled: func(g *plan.Gadget) bool { return len(g.Styles) > 0 }}
	for _, opt := range opts {
		opt(&o)
	}

	order, err := Order(p)
	if err != nil {
		return nil, err
	}

	regs := make([]Registration, 0, len(order))
	for _, name := range order {
		g, _ := p.Lookup(name)
		reg := Registration{
			Gadget:       g.Name,
			Name:         cfg.ModuleName(g.Name),
			Dependencies: dependencies(cfg, g),
			Guard:        NewGuard(g.Conditions),
			Scripts:      []string{},
			Styles:       []string{},
		}
		switch mode {
		case Bundled:
			reg.Scripts = append(reg.Scripts, cfg.URL(wire.Path(g)))
		case Unbundled:
			for _, s := range g.Scripts {
				reg.Scripts = append(reg.Scripts, cfg.URL(filemap.EntryName(g.Dir, s)+".js"))
			}
			if o.styled(g) {
				reg.Styles = append(reg.Styles, cfg.URL(filemap.StyleEntryName(g.Dir)+".css"))
			}
		}
		if g.HasI18n() {
			reg.I18n = messages(cfg, g)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// Order returns the gadget names of p so that every gadget follows the
// gadgets it requires. Gadgets without a constraint between them keep
// their plan order.
func Order(p *plan.BuildPlan) ([]string, error) {
	graph := dag.New()
	for _, g := range p.Gadgets() {
		graph.AddNode(g.Name)
	}
	for _, g := range p.Gadgets() {
		for _, req := range g.Requires {
			graph.AddEdge(req, g.Name)
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		if cycleErr, ok := err.(*dag.CycleError); ok {
			// Edges point from a requirement to its dependent; report
			// the cycle in requires direction.
			cycle := slices.Clone(cycleErr.Cycle)
			slices.Reverse(cycle)
			return nil, &gadgeterr.DependencyCycleError{Cycle: cycle}
		}
		return nil, err
	}
	return order, nil
}

func dependencies(cfg *config.Build, g *plan.Gadget) []string {
	deps := make([]string, 0, len(g.Requires)+len(g.Conditions.Dependencies))
	for _, req := range g.Requires {
		deps = append(deps, cfg.ModuleName(req))
	}
	for _, d := range g.Conditions.Dependencies {
		if !slices.Contains(deps, d) {
			deps = append(deps, d)
		}
	}
	return deps
}

func messages(cfg *config.Build, g *plan.Gadget) *Messages {
	m := &Messages{
		Key:     i18n.Key(cfg.Namespace, g.Name),
		BaseURL: cfg.URL(filemap.I18nDir(g.Dir)) + "/",
	}
	for _, f := range g.I18n {
		base := filepath.Base(filepath.FromSlash(f))
		lang := strings.TrimSuffix(base, filepath.Ext(base))
		if !slices.Contains(m.Languages, lang) {
			m.Languages = append(m.Languages, lang)
		}
	}
	return m
}
