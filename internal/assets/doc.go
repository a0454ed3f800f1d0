// Package assets copies static files into the output tree and provides the
// atomic file write used by every phase that produces output.
package assets
