package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/gadgetry/gadgetc/internal/branding"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
)

var marker = "/* " + branding.CLIName() + ":i18n */"

// Marker returns the comment that opens every injected prologue.
func Marker() string { return marker }

// Key returns the addressable message key of a gadget.
func Key(namespace, gadget string) string {
	return namespace + ".i18n." + gadget
}

// Prologue returns the statement injected into a gadget's scripts.
func Prologue(namespace, gadget string) string {
	return fmt.Sprintf("%s mw.libs[%s].i18n.use(%s);", marker, quote(namespace), quote(Key(namespace, gadget)))
}

// Transform inserts the localization prologue into the code of a watched
// module, after any hashbang line and directive prologue and before every
// other statement. Unwatched modules and modules that already carry the
// prologue are returned unchanged.
func Transform(code string, id ModuleID, namespace string, ws WatchSet) (string, error) {
	gadget, ok := ws[id]
	if !ok {
		return code, nil
	}
	fail := func(err error) (string, error) {
		return "", &gadgeterr.TransformError{Gadget: gadget, ModuleID: string(id), Err: err}
	}

	if err := parseCheck(code, string(id)); err != nil {
		return fail(err)
	}
	at, injected, err := insertionPoint(code)
	if err != nil {
		return fail(err)
	}
	if injected {
		return code, nil
	}

	var b strings.Builder
	b.Grow(len(code) + 128)
	b.WriteString(code[:at])
	if at > 0 && code[at-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(Prologue(namespace, gadget))
	if at < len(code) && code[at] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(code[at:])
	return b.String(), nil
}

// Hook binds the namespace and watch set for use as a bundler load hook.
func Hook(namespace string, ws WatchSet) func(path, code string) (string, error) {
	return func(path, code string) (string, error) {
		return Transform(code, NewModuleID(path), namespace, ws)
	}
}

func parseCheck(code, path string) error {
	result := api.Transform(code, api.TransformOptions{
		Loader:     loaderFor(path),
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}
	msg := result.Errors[0]
	if loc := msg.Location; loc != nil {
		return fmt.Errorf("%d:%d: %s", loc.Line, loc.Column, msg.Text)
	}
	return errors.New(msg.Text)
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

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
