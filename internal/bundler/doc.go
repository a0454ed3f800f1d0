// Package bundler compiles the mapped entry points with esbuild.
//
// Every JavaScript or TypeScript module esbuild loads from disk is passed
// through a Hook first; the i18n injector is the hook used by builds.
// Output is kept in memory and keyed by entry name.
package bundler
