package wire

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gadgetry/gadgetc/internal/assets"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/logging"
	"github.com/gadgetry/gadgetc/internal/plan"
	"golang.org/x/sync/errgroup"
)

// Input is the compiled output of one gadget.
type Input struct {
	Gadget *plan.Gadget
	Script []byte
	Style  []byte
}

// Encode wraps every input in parallel, bounded by cfg.Jobs, entirely in
// memory. Modules are returned in input order.
func Encode(ctx context.Context, cfg *config.Build, inputs []Input, minify bool) ([]*Module, error) {
	modules := make([]*Module, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Jobs, 1))
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := Write(cfg, in.Gadget, in.Script, in.Style, minify)
			if err != nil {
				return err
			}
			modules[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

// WriteAll encodes every input and, only if every gadget encoded
// successfully, writes the artifacts atomically under cfg.OutDir.
func WriteAll(ctx context.Context, cfg *config.Build, inputs []Input, minify bool) ([]*Module, error) {
	modules, err := Encode(ctx, cfg, inputs, minify)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, cfg.OutDir, modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// Save writes encoded modules under outDir, each atomically.
func Save(ctx context.Context, outDir string, modules []*Module) error {
	logger := logging.FromContext(ctx)
	for _, m := range modules {
		dst := filepath.Join(outDir, filepath.FromSlash(m.Path))
		if err := assets.WriteFileAtomic(dst, m.Text, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		logger.Debug("wrote module", "module", m.ModuleName, "version", m.Version, "path", m.Path)
	}
	return nil
}
