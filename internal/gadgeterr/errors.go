package gadgeterr

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports an ambiguous or invalid manifest policy.
// It is fatal and aborts the build before any work is done.
type ConfigurationError struct {
	Gadget string // empty when the problem is workspace-wide
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Gadget == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: gadget %q: %s", e.Gadget, e.Reason)
}

// MissingSourceError reports a declared file that does not exist.
// It isolates to one gadget.
type MissingSourceError struct {
	Gadget string
	Path   string
	Err    error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("gadget %q: missing source %s", e.Gadget, e.Path)
}

func (e *MissingSourceError) Unwrap() error { return e.Err }

// PathTraversalError reports a declared path that escapes the gadget's
// subdirectory. It isolates to one gadget.
type PathTraversalError struct {
	Gadget string
	Path   string
	Root   string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("gadget %q: path %q escapes %s", e.Gadget, e.Path, e.Root)
}

// TransformError reports that the i18n prologue could not be placed.
type TransformError struct {
	Gadget   string
	ModuleID string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("gadget %q: transforming %s: %v", e.Gadget, e.ModuleID, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// DependencyCycleError reports a cycle in gadget requires. Cycle lists the
// gadgets along the cycle with the first one repeated at the end.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

// BuildConsistencyError reports that the wrap phase found no compiled
// artifact for a gadget that declared the corresponding sources. It is
// fatal for the whole build.
type BuildConsistencyError struct {
	Gadget string
	Kind   string // "script" or "style"
}

func (e *BuildConsistencyError) Error() string {
	return fmt.Sprintf("gadget %q: compiled %s output missing", e.Gadget, e.Kind)
}

// GadgetOf returns the gadget name carried by err, or "" when err is not
// one of the taxonomy errors. Joined errors yield the first match.
func GadgetOf(err error) string {
	var (
		cfg  *ConfigurationError
		miss *MissingSourceError
		trav *PathTraversalError
		tr   *TransformError
		cons *BuildConsistencyError
	)
	switch {
	case errors.As(err, &miss):
		return miss.Gadget
	case errors.As(err, &trav):
		return trav.Gadget
	case errors.As(err, &tr):
		return tr.Gadget
	case errors.As(err, &cons):
		return cons.Gadget
	case errors.As(err, &cfg):
		return cfg.Gadget
	}
	return ""
}

// Flatten expands errors produced by errors.Join into their components.
// A nil error yields nil.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}
