package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/gadgetry/gadgetc/internal/branding"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/filemap"
	"github.com/gadgetry/gadgetc/internal/logging"
)

// Hook rewrites the source of one module before compilation.
type Hook func(path, code string) (string, error)

// sourceFilter matches the modules passed through the hook.
const sourceFilter = `\.(js|mjs|cjs|jsx|ts|mts|cts|tsx)$`

// Bundle compiles every entry of m. A non-nil hook sees each script module
// as it is loaded; the first error it returns is returned unchanged.
func Bundle(ctx context.Context, cfg *config.Build, m *filemap.Mapping, hook Hook) (*Output, error) {
	logger := logging.FromContext(ctx)
	out := newOutput(m)
	if len(m.Entries) == 0 {
		return out, nil
	}

	entries := make([]api.EntryPoint, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = api.EntryPoint{InputPath: e.Source, OutputPath: e.Name}
	}

	capture := &hookErrors{}
	opts := api.BuildOptions{
		EntryPointsAdvanced: entries,
		AbsWorkingDir:       cfg.Dir,
		Outdir:              cfg.OutDir,
		Bundle:              true,
		Write:               false,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		Target:              api.ES2017,
		Charset:             api.CharsetUTF8,
		LegalComments:       api.LegalCommentsEndOfFile,
		MinifyWhitespace:    cfg.Minify,
		MinifyIdentifiers:   cfg.Minify,
		MinifySyntax:        cfg.Minify,
		LogLevel:            api.LogLevelSilent,
	}
	if hook != nil {
		opts.Plugins = []api.Plugin{transformPlugin(hook, capture)}
	}

	bctx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return nil, fmt.Errorf("configuring bundler: %w", messagesError(ctxErr.Errors))
	}
	defer bctx.Dispose()
	stop := context.AfterFunc(ctx, bctx.Cancel)
	defer stop()

	result := bctx.Rebuild()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := capture.first(); err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("bundling: %w", messagesError(result.Errors))
	}
	for _, w := range result.Warnings {
		logger.Warn(w.Text, "file", location(w))
	}

	for _, f := range result.OutputFiles {
		rel, err := filepath.Rel(cfg.OutDir, f.Path)
		if err != nil {
			return nil, fmt.Errorf("locating output %s: %w", f.Path, err)
		}
		rel = filepath.ToSlash(rel)
		ext := filepath.Ext(rel)
		name := strings.TrimSuffix(rel, ext)
		// Minification can empty a file; an empty output is still an output.
		contents := f.Contents
		if contents == nil {
			contents = []byte{}
		}
		switch ext {
		case ".js":
			out.js[name] = contents
		case ".css":
			out.css[name] = contents
		default:
			logger.Debug("ignoring bundler output", "path", rel)
		}
	}
	logger.Debug("bundled", "entries", len(m.Entries), "outputs", len(result.OutputFiles))
	return out, nil
}

func transformPlugin(hook Hook, capture *hookErrors) api.Plugin {
	return api.Plugin{
		Name: branding.CLIName() + "-transform",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: sourceFilter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					data, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					code, err := hook(args.Path, string(data))
					if err != nil {
						capture.add(err)
						return api.OnLoadResult{}, err
					}
					return api.OnLoadResult{
						Contents:   &code,
						Loader:     loaderFor(args.Path),
						ResolveDir: filepath.Dir(args.Path),
					}, nil
				})
		},
	}
}

// hookErrors keeps the first hook error; OnLoad callbacks run concurrently.
type hookErrors struct {
	mu  sync.Mutex
	err error
}

func (h *hookErrors) add(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err == nil {
		h.err = err
	}
}

func (h *hookErrors) first() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func loaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}

func messagesError(msgs []api.Message) error {
	errs := make([]error, 0, len(msgs))
	for _, m := range msgs {
		if loc := location(m); loc != "" {
			errs = append(errs, fmt.Errorf("%s: %s", loc, m.Text))
			continue
		}
		errs = append(errs, errors.New(m.Text))
	}
	return errors.Join(errs...)
}

func location(m api.Message) string {
	if m.Location == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", m.Location.File, m.Location.Line, m.Location.Column)
}
