package plan

import (
	"fmt"
	"io"
	"strings"
)

// Print writes the plan as a tree: each gadget with its files, then its
// requires, followed by the gadgets that were left out.
func Print(w io.Writer, p *BuildPlan) {
	fmt.Fprintf(w, "Resolved %d %s:\n\n", p.Len(), pluralize("gadget", p.Len()))

	for _, g := range p.gadgets {
		fmt.Fprintf(w, "  %s (%s/)  %s\n", g.Name, g.Dir, summarize(g))

		var children []string
		for _, req := range g.Requires {
			children = append(children, "requires "+req)
		}
		if deps := g.Conditions.Dependencies; deps.Present() {
			children = append(children, "host modules: "+strings.Join(deps, ", "))
		}
		for i, c := range children {
			connector := "├── "
			if i == len(children)-1 {
				connector = "└── "
			}
			fmt.Fprintf(w, "  %s%s\n", connector, c)
		}
	}

	if len(p.skipped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Skipped:")
		for _, s := range p.skipped {
			fmt.Fprintf(w, "    %s (%s)\n", s.Name, s.Reason)
		}
	}
	fmt.Fprintln(w)
}

func summarize(g *Gadget) string {
	var parts []string
	for _, c := range []struct {
		noun string
		n    int
	}{
		{"script", len(g.Scripts)},
		{"style", len(g.Styles)},
		{"i18n file", len(g.I18n)},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, pluralize(c.noun, c.n)))
		}
	}
	return strings.Join(parts, ", ")
}

func pluralize(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
