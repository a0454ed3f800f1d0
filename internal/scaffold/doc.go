// Package scaffold generates new gadgets from embedded templates. It powers
// the "gadgetc new" command: it writes the gadget's script, stylesheet and
// optional message file, then adds the gadget to the manifest without
// disturbing the manifest's existing layout or comments.
package scaffold
