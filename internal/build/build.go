package build

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gadgetry/gadgetc/internal/assets"
	"github.com/gadgetry/gadgetc/internal/bundler"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/entrypoint"
	"github.com/gadgetry/gadgetc/internal/filemap"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/i18n"
	"github.com/gadgetry/gadgetc/internal/logging"
	"github.com/gadgetry/gadgetc/internal/manifest"
	"github.com/gadgetry/gadgetc/internal/plan"
	"github.com/gadgetry/gadgetc/internal/wire"
)

// Run builds every gadget selected by doc into cfg.OutDir.
func Run(ctx context.Context, cfg *config.Build, doc *manifest.Document) (*Report, error) {
	logger := logging.FromContext(ctx)
	mode := entrypoint.Bundled
	if !cfg.Rollup {
		mode = entrypoint.Unbundled
	}
	report := &Report{Mode: mode}

	p, err := plan.Resolve(doc)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved plan", "gadgets", p.Names())

	m, err := filemap.Map(cfg, p)
	if err != nil {
		report.Failures = gadgeterr.Flatten(err)
		for _, f := range report.Failures {
			logger.Error("skipping gadget", "gadget", gadgeterr.GadgetOf(f), "err", f)
		}
		var cascaded []string
		p, cascaded = p.Without(m.Failed...)
		for _, name := range cascaded {
			logger.Warn("skipping gadget", "gadget", name, "reason", "requires a gadget that failed")
		}
		report.Pruned = cascaded
		if m, err = filemap.Map(cfg, p); err != nil {
			return nil, err
		}
	}
	report.Plan = p
	if p.Len() == 0 {
		logger.Warn("nothing to build")
	}

	ws := i18n.ComputeWatchSet(cfg, p)
	out, err := bundler.Bundle(ctx, cfg, m, i18n.Hook(cfg.Namespace, ws))
	if err != nil {
		return nil, err
	}

	loader, err := entrypoint.Synthesize(cfg, p, mode, entrypoint.WithStyled(func(g *plan.Gadget) bool {
		_, style := out.Gadget(g.Name)
		return style != nil
	}))
	if err != nil {
		return nil, err
	}

	if err := emit(ctx, cfg, p, m, out, loader, report); err != nil {
		return nil, err
	}
	return report, nil
}

// compiled is the part of the bundler output the writers read.
type compiled interface {
	Script(entry string) []byte
	Gadget(name string) (script, style []byte)
}

// emit produces every output file in memory, then cleans, copies and
// writes. A consistency error leaves the output directory untouched.
func emit(ctx context.Context, cfg *config.Build, p *plan.BuildPlan, m *filemap.Mapping, out compiled, loader string, report *Report) error {
	logger := logging.FromContext(ctx)

	var files []file
	switch report.Mode {
	case entrypoint.Bundled:
		inputs := make([]wire.Input, 0, p.Len())
		for _, g := range p.Gadgets() {
			script, style := out.Gadget(g.Name)
			inputs = append(inputs, wire.Input{Gadget: g, Script: script, Style: style})
		}
		modules, err := wire.Encode(ctx, cfg, inputs, cfg.Minify)
		if err != nil {
			return err
		}
		report.Modules = modules
	case entrypoint.Unbundled:
		raw, err := stageRaw(p, m, out)
		if err != nil {
			return err
		}
		files = raw
		for _, f := range raw {
			report.Files = append(report.Files, f.rel)
		}
	}

	if cfg.Clean {
		if err := assets.RemoveAll(cfg.OutDir); err != nil {
			return err
		}
	}
	if err := assets.Copy(cfg.OutDir, m.Copies); err != nil {
		return err
	}
	report.Copied = len(m.Copies)

	if err := wire.Save(ctx, cfg.OutDir, report.Modules); err != nil {
		return err
	}
	for _, f := range files {
		dst := filepath.Join(cfg.OutDir, filepath.FromSlash(f.rel))
		if err := assets.WriteFileAtomic(dst, f.data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
	}

	report.Entrypoint = filepath.Join(cfg.OutDir, filepath.FromSlash(cfg.EntryFile))
	if err := assets.WriteFileAtomic(report.Entrypoint, []byte(loader), 0o644); err != nil {
		return fmt.Errorf("writing loader: %w", err)
	}
	logger.Debug("wrote loader", "path", report.Entrypoint)
	return nil
}

// file is an output held in memory, relative to the output root.
type file struct {
	rel  string
	data []byte
}

// stageRaw collects the compiler output as is: one file per script entry
// and one stylesheet per gadget. Every gadget is checked before anything is
// returned.
func stageRaw(p *plan.BuildPlan, m *filemap.Mapping, out compiled) ([]file, error) {
	var files []file
	for _, g := range p.Gadgets() {
		for _, e := range m.GadgetEntries(g.Name) {
			if e.Kind != filemap.Script {
				continue
			}
			js := out.Script(e.Name)
			if js == nil {
				return nil, &gadgeterr.BuildConsistencyError{Gadget: g.Name, Kind: "script"}
			}
			files = append(files, file{e.Name + ".js", js})
		}
		_, style := out.Gadget(g.Name)
		if style == nil && len(g.Styles) > 0 {
			return nil, &gadgeterr.BuildConsistencyError{Gadget: g.Name, Kind: "style"}
		}
		if style != nil {
			files = append(files, file{filemap.StyleEntryName(g.Dir) + ".css", style})
		}
	}
	return files, nil
}
