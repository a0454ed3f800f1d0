// Package plan resolves a gadget manifest into the ordered, immutable build
// plan consumed by every later phase: it applies the workspace policy, drops
// disabled and empty gadgets, and checks that every requires edge points at
// a gadget that is itself part of the build.
package plan
