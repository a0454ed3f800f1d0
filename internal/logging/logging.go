// Package logging builds the CLI logger and carries it through
// context.Context so build phases can log without a package-level logger.
package logging

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/gadgetry/gadgetc/internal/branding"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var loggerKey = key{}

// New returns a logger writing to w. verbose enables debug output.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          branding.CLIName(),
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx, falling back to a discarding
// logger when none was attached.
func FromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return logger
	}
	return Discard()
}
