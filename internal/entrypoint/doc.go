// Package entrypoint generates the loader script that registers every built
// gadget with the host module system and fetches the ones whose loading
// conditions hold for the current page and user.
//
// Registrations are emitted in dependency order: a gadget always follows
// the gadgets it requires. A cycle in requires produces a
// DependencyCycleError and no output.
package entrypoint
