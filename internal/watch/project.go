package watch

import (
	"path/filepath"
	"strings"

	"github.com/gadgetry/gadgetc/internal/config"
)

// ForBuild returns a Config watching the sources, the manifest and the
// config file of a project, ignoring its output directory.
func ForBuild(cfg *config.Build) Config {
	c := Config{Dir: cfg.Dir}
	if rel, ok := inside(cfg.Dir, cfg.SrcDir); ok {
		c.Patterns = append(c.Patterns, rel+"/**")
	}
	if rel, ok := inside(cfg.Dir, cfg.Manifest); ok {
		c.Patterns = append(c.Patterns, rel)
	}
	if rel, ok := inside(cfg.Dir, config.FilePath(cfg.Dir)); ok {
		c.Patterns = append(c.Patterns, rel)
	}
	if rel, ok := inside(cfg.Dir, cfg.OutDir); ok {
		c.Ignore = append(c.Ignore, rel, rel+"/**")
	}
	return c
}

func inside(dir, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
