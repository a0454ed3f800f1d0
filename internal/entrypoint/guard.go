package entrypoint

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gadgetry/gadgetc/internal/manifest"
)

// Context is the client state a guard is evaluated against.
type Context struct {
	Skin         string
	Action       string
	Namespace    int
	ContentModel string
	Categories   []string
	Rights       []string
}

// Guard is the loading condition of one gadget: every present field must
// match, and a field matches when any of its values does.
type Guard struct {
	Skins         manifest.Condition
	Actions       manifest.Condition
	Namespaces    manifest.Condition
	ContentModels manifest.Condition
	Categories    manifest.Condition
	Rights        manifest.Condition
}

// NewGuard derives a guard from resourceLoader conditions. Dependencies are
// not a condition and are ignored.
func NewGuard(c manifest.Conditions) Guard {
	return Guard{
		Skins:         c.Skins,
		Actions:       c.Actions,
		Namespaces:    c.Namespaces,
		ContentModels: c.ContentModels,
		Categories:    c.Categories,
		Rights:        c.Rights,
	}
}

// Always reports whether the guard imposes no constraint.
func (g Guard) Always() bool {
	return !g.Skins.Present() && !g.Actions.Present() && !g.Namespaces.Present() &&
		!g.ContentModels.Present() && !g.Categories.Present() && !g.Rights.Present()
}

// Eval evaluates the guard the way the generated expression does.
func (g Guard) Eval(ctx Context) bool {
	for _, c := range g.clauses() {
		if !c.eval(ctx) {
			return false
		}
	}
	return true
}

// JS renders the guard as a short-circuiting JavaScript expression over a
// variable named ctx and the loader's has/hasAny helpers.
func (g Guard) JS() string {
	clauses := g.clauses()
	if len(clauses) == 0 {
		return "true"
	}
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.js()
	}
	return strings.Join(parts, " && ")
}

type clause struct {
	values manifest.Condition
	field  string // property of the client context
	list   bool   // field holds a list; match when any element is listed
	number bool   // field is numeric; values are compared as decimal strings
}

func (g Guard) clauses() []clause {
	all := []clause{
		{values: g.Skins, field: "skin"},
		{values: g.Actions, field: "action"},
		{values: g.Namespaces, field: "namespace", number: true},
		{values: g.ContentModels, field: "contentModel"},
		{values: g.Categories, field: "categories", list: true},
		{values: g.Rights, field: "rights", list: true},
	}
	var out []clause
	for _, c := range all {
		if c.values.Present() {
			out = append(out, c)
		}
	}
	return out
}

func (c clause) js() string {
	values := jsValue([]string(c.values))
	switch {
	case c.list:
		return "hasAny(ctx." + c.field + ", " + values + ")"
	case c.number:
		return "has(" + values + ", String(ctx." + c.field + "))"
	default:
		return "has(" + values + ", ctx." + c.field + ")"
	}
}

func (c clause) eval(ctx Context) bool {
	switch c.field {
	case "skin":
		return slices.Contains(c.values, ctx.Skin)
	case "action":
		return slices.Contains(c.values, ctx.Action)
	case "namespace":
		return slices.Contains(c.values, strconv.Itoa(ctx.Namespace))
	case "contentModel":
		return slices.Contains(c.values, ctx.ContentModel)
	case "categories":
		return slices.ContainsFunc(ctx.Categories, func(s string) bool { return slices.Contains(c.values, s) })
	case "rights":
		return slices.ContainsFunc(ctx.Rights, func(s string) bool { return slices.Contains(c.values, s) })
	}
	return false
}
