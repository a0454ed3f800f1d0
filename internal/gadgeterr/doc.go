// Package gadgeterr defines the error taxonomy shared by the build phases.
// Every error carries the offending gadget name and, where one exists, the
// offending file path, so a failure can be traced without re-reading the
// manifest. Gadget-scoped errors are collected by the caller and joined with
// errors.Join; the remaining kinds abort their phase immediately.
package gadgeterr
