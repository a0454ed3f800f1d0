package wire

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/plan"
)

// VersionLength is the length of a module version token.
const VersionLength = 5

const (
	scriptPlaceholder = "__GADGETC_SCRIPT__"
	stylePlaceholder  = "__GADGETC_STYLE__"
)

// Module is one encoded gadget.
type Module struct {
	Gadget     string
	ModuleName string
	Version    string
	Script     []byte
	Style      []byte
	Path       string // output path relative to the output root
	Text       []byte // the complete artifact
}

// Path returns the artifact path of a gadget relative to the output root.
func Path(g *plan.Gadget) string {
	return path.Join(filepath.ToSlash(filepath.Clean(g.Dir)), g.Name+".module.js")
}

// Version returns the version token for a script and style payload: FNV-1a
// over script followed by style, in base 36, zero-padded and cut to
// VersionLength characters.
func Version(script, style []byte) string {
	h := fnv.New32a()
	h.Write(script)
	h.Write(style)
	v := strconv.FormatUint(uint64(h.Sum32()), 36)
	if len(v) < VersionLength {
		v = strings.Repeat("0", VersionLength-len(v)) + v
	}
	return v[:VersionLength]
}

// Write encodes the compiled output of g. A nil script for a gadget that
// declares scripts, or a nil style for one that declares styles, means the
// compiler and the writer disagree about the build and is reported as a
// BuildConsistencyError.
func Write(cfg *config.Build, g *plan.Gadget, script, style []byte, minify bool) (*Module, error) {
	if script == nil && len(g.Scripts) > 0 {
		return nil, &gadgeterr.BuildConsistencyError{Gadget: g.Name, Kind: "script"}
	}
	if style == nil && len(g.Styles) > 0 {
		return nil, &gadgeterr.BuildConsistencyError{Gadget: g.Name, Kind: "style"}
	}

	m := &Module{
		Gadget:     g.Name,
		ModuleName: cfg.ModuleName(g.Name),
		Version:    Version(script, style),
		Script:     script,
		Style:      style,
		Path:       Path(g),
	}

	wrapper := wrapperSource(m.ModuleName + "@" + m.Version)
	if minify {
		var err error
		if wrapper, err = minifyWrapper(wrapper); err != nil {
			return nil, fmt.Errorf("minifying wrapper of gadget %q: %w", g.Name, err)
		}
	}
	text, err := splice(wrapper, script, style)
	if err != nil {
		return nil, fmt.Errorf("encoding gadget %q: %w", g.Name, err)
	}
	m.Text = text
	return m, nil
}

func wrapperSource(id string) string {
	return "mw.loader.impl(function () {\n" +
		"\treturn [\n" +
		"\t\t" + quote(id) + ",\n" +
		"\t\tfunction ($, jQuery, require, module) {\n" +
		scriptPlaceholder + ";\n" +
		"\t\t},\n" +
		"\t\t{ \"css\": [" + stylePlaceholder + "] },\n" +
		"\t\t{},\n" +
		"\t\t{}\n" +
		"\t];\n" +
		"});\n"
}

func minifyWrapper(src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:           api.LoaderJS,
		MinifyWhitespace: true,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("%s", result.Errors[0].Text)
	}
	return string(result.Code), nil
}

// splice replaces the placeholders in wrapper with the payloads. The
// positions are taken from the wrapper alone, so payload content can never
// be mistaken for a placeholder.
func splice(wrapper string, script, style []byte) ([]byte, error) {
	si := strings.Index(wrapper, scriptPlaceholder)
	ci := strings.Index(wrapper, stylePlaceholder)
	if si < 0 || ci < 0 || ci < si {
		return nil, fmt.Errorf("wrapper placeholders not found")
	}
	scriptEnd := si + len(scriptPlaceholder)
	if scriptEnd < len(wrapper) && wrapper[scriptEnd] == ';' {
		scriptEnd++
	}

	var css string
	if len(style) > 0 {
		css = quote(string(style))
	}

	var b strings.Builder
	b.Grow(len(wrapper) + len(script) + len(css) + 1)
	b.WriteString(wrapper[:si])
	b.Write(script)
	// A trailing line comment in the script must not swallow the brace.
	b.WriteByte('\n')
	b.WriteString(wrapper[scriptEnd:ci])
	b.WriteString(css)
	b.WriteString(wrapper[ci+len(stylePlaceholder):])
	return []byte(b.String()), nil
}

func quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		panic(err)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
