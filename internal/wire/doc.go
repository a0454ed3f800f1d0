// Package wire encodes compiled gadget output as host runtime registration
// calls.
//
// Each gadget becomes one file holding a single mw.loader.impl call. The
// module version is derived from the payload bytes, so identical output
// always carries the same version. Minification touches only the wrapping
// call; script and style payloads are spliced in byte for byte.
package wire
