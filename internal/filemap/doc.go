// Package filemap turns a build plan into bundler entry points and
// static-copy targets.
//
// Every declared path is resolved relative to the gadget's directory under
// the source root and must stay inside it. Problems are isolated per gadget:
// Map returns a mapping for every healthy gadget together with the joined
// errors of the ones that failed.
package filemap
