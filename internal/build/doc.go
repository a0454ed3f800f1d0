// Package build runs the gadget build pipeline.
//
// The phases run in order: resolve the manifest into a plan, map the plan
// onto entry points, compile with the i18n hook, synthesize the loader,
// copy message files, then write the per-gadget artifacts and the loader.
// Mapping failures only remove the affected gadgets (and the gadgets that
// require them); every other error aborts the build before any output is
// written for the failing phase.
package build
