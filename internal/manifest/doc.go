// Package manifest handles parsing and validation of the gadget manifest: the
// workspace policy that selects gadgets for a build and the ordered map of
// gadget definitions. Raw YAML is validated against an embedded JSON Schema
// before decoding, and the loosely typed resourceLoader condition fields are
// normalized into a single Condition form while decoding.
package manifest
