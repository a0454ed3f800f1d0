package i18n

import (
	"path/filepath"

	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/plan"
)

// ModuleID identifies a bundler module: its absolute source path with
// symlinks resolved.
type ModuleID string

// NewModuleID normalizes a source path into a ModuleID. The bundler reports
// modules by their real path, so a source reached through a symlinked
// directory must resolve to the same ID. Paths that cannot be resolved keep
// their cleaned absolute form.
func NewModuleID(path string) ModuleID {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return ModuleID(filepath.Clean(path))
}

// WatchSet maps the modules eligible for injection to their gadget.
type WatchSet map[ModuleID]string

// Contains reports whether id is eligible for injection.
func (ws WatchSet) Contains(id ModuleID) bool {
	_, ok := ws[id]
	return ok
}

// ComputeWatchSet collects the scripts of every planned gadget that declares
// i18n files. Styles and message files themselves are never watched.
func ComputeWatchSet(cfg *config.Build, p *plan.BuildPlan) WatchSet {
	ws := make(WatchSet)
	for _, g := range p.Gadgets() {
		if !g.HasI18n() {
			continue
		}
		root := filepath.Join(cfg.SrcDir, g.Dir)
		for _, s := range g.Scripts {
			ws[NewModuleID(filepath.Join(root, s))] = g.Name
		}
	}
	return ws
}
