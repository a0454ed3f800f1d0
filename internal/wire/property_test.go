package wire

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestVersionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("identical payloads yield identical versions", prop.ForAll(
		func(script, style []byte) bool {
			return Version(script, style) == Version(bytes.Clone(script), bytes.Clone(style))
		},
		gen.SliceOf(gen.UInt8()),
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("changing one byte changes the version", prop.ForAll(
		func(script, style []byte, at uint, inStyle bool) bool {
			target := script
			if inStyle {
				target = style
			}
			if len(target) == 0 {
				return true
			}
			before := Version(script, style)
			changed := bytes.Clone(target)
			changed[at%uint(len(changed))] ^= 0xff
			if inStyle {
				return Version(script, changed) != before
			}
			return Version(changed, style) != before
		},
		gen.SliceOfN(64, gen.UInt8()),
		gen.SliceOfN(64, gen.UInt8()),
		gen.UInt(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
