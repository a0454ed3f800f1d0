package filemap

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/plan"
)

// Kind distinguishes script entries from style entries.
type Kind int

const (
	Script Kind = iota
	Style
)

func (k Kind) String() string {
	if k == Style {
		return "style"
	}
	return "script"
}

// StyleEntry is the entry name suffix used for a gadget's stylesheet.
const StyleEntry = "style"

// EntryName returns the entry name of a script declared at rel in the
// gadget directory dir.
func EntryName(dir, rel string) string {
	clean := filepath.ToSlash(filepath.Clean(rel))
	return path.Join(filepath.ToSlash(filepath.Clean(dir)), strings.TrimSuffix(clean, path.Ext(clean)))
}

// StyleEntryName returns the entry name of the stylesheet of gadget
// directory dir.
func StyleEntryName(dir string) string {
	return path.Join(filepath.ToSlash(filepath.Clean(dir)), StyleEntry)
}

// I18nDir returns the output directory holding a gadget's message files.
func I18nDir(dir string) string {
	return path.Join(filepath.ToSlash(filepath.Clean(dir)), "i18n")
}

// Entry is one bundler entry point.
type Entry struct {
	Gadget string
	Name   string // "<subdir>/<path without extension>", slash-separated
	Source string // absolute source path
	Kind   Kind
}

// CopyTarget is a file copied verbatim into the output tree.
type CopyTarget struct {
	Gadget string
	Source string // absolute source path
	Dest   string // "<subdir>/i18n/<basename>", relative to the output root
}

// Mapping is the bundler input derived from a plan.
type Mapping struct {
	Entries []Entry
	Copies  []CopyTarget
	Failed  []string // gadgets left out because of mapping errors
}

// EntryMap returns entry name → source path.
func (m *Mapping) EntryMap() map[string]string {
	out := make(map[string]string, len(m.Entries))
	for _, e := range m.Entries {
		out[e.Name] = e.Source
	}
	return out
}

// GadgetEntries returns the entries of one gadget, in declaration order.
func (m *Mapping) GadgetEntries(gadget string) []Entry {
	var out []Entry
	for _, e := range m.Entries {
		if e.Gadget == gadget {
			out = append(out, e)
		}
	}
	return out
}

// Map resolves every planned gadget's files. The returned error joins the
// per-gadget errors; the mapping is still usable for the gadgets that are
// not listed in Mapping.Failed.
func Map(cfg *config.Build, p *plan.BuildPlan) (*Mapping, error) {
	var (
		m    = &Mapping{}
		errs []error
		used = make(map[string]string) // entry name → owning gadget
	)
	for _, g := range p.Gadgets() {
		entries, copies, err := mapGadget(cfg.SrcDir, g)
		if err == nil {
			err = claim(used, g.Name, entries)
		}
		if err != nil {
			m.Failed = append(m.Failed, g.Name)
			errs = append(errs, err)
			continue
		}
		m.Entries = append(m.Entries, entries...)
		m.Copies = append(m.Copies, copies...)
	}
	return m, errors.Join(errs...)
}

func mapGadget(srcDir string, g *plan.Gadget) ([]Entry, []CopyTarget, error) {
	root, err := within(srcDir, g.Dir)
	if err != nil {
		return nil, nil, &gadgeterr.PathTraversalError{Gadget: g.Name, Path: g.Dir, Root: srcDir}
	}

	var (
		entries []Entry
		copies  []CopyTarget
		errs    []error
	)
	resolve := func(rel string) (string, bool) {
		abs, err := within(root, rel)
		if err != nil {
			errs = append(errs, &gadgeterr.PathTraversalError{Gadget: g.Name, Path: rel, Root: root})
			return "", false
		}
		if err := exists(abs); err != nil {
			errs = append(errs, &gadgeterr.MissingSourceError{Gadget: g.Name, Path: abs, Err: err})
			return "", false
		}
		return abs, true
	}

	for _, s := range g.Scripts {
		abs, ok := resolve(s)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Gadget: g.Name,
			Name:   EntryName(g.Dir, s),
			Source: abs,
			Kind:   Script,
		})
	}
	for i, s := range g.Styles {
		abs, ok := resolve(s)
		if !ok || i > 0 {
			continue
		}
		entries = append(entries, Entry{
			Gadget: g.Name,
			Name:   StyleEntryName(g.Dir),
			Source: abs,
			Kind:   Style,
		})
	}
	for _, f := range g.I18n {
		abs, ok := resolve(f)
		if !ok {
			continue
		}
		copies = append(copies, CopyTarget{
			Gadget: g.Name,
			Source: abs,
			Dest:   path.Join(I18nDir(g.Dir), filepath.Base(abs)),
		})
	}

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return entries, copies, nil
}

// claim records the gadget's entry names, failing on a name already taken
// by this or another gadget.
func claim(used map[string]string, gadget string, entries []Entry) error {
	for i, e := range entries {
		if owner, ok := used[e.Name]; ok {
			for _, prev := range entries[:i] {
				if used[prev.Name] == gadget {
					delete(used, prev.Name)
				}
			}
			return &gadgeterr.ConfigurationError{
				Gadget: gadget,
				Reason: fmt.Sprintf("entry %q is also produced by gadget %q", e.Name, owner),
			}
		}
		used[e.Name] = gadget
	}
	return nil
}

// within joins rel onto root and fails when the result leaves root.
func within(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q is not relative", rel)
	}
	abs := filepath.Join(root, rel)
	r, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", rel, root)
	}
	return abs, nil
}

func exists(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", p)
	}
	return nil
}
