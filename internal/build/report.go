package build

import (
	"fmt"
	"io"

	"github.com/gadgetry/gadgetc/internal/entrypoint"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/plan"
	"github.com/gadgetry/gadgetc/internal/wire"
)

// Report summarizes a completed build.
type Report struct {
	Mode       entrypoint.Mode
	Plan       *plan.BuildPlan // the plan that was built, after pruning
	Modules    []*wire.Module  // bundled mode
	Files      []string        // unbundled mode, relative to the output root
	Copied     int             // message files copied
	Entrypoint string          // absolute path of the generated loader
	Failures   []error         // per-gadget errors that removed a gadget
	Pruned     []string        // gadgets removed because a requirement failed
}

// Failed reports whether any gadget was left out because of an error.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0 || len(r.Pruned) > 0
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Built %d gadget(s) (%s)\n", r.Plan.Len(), r.Mode)
	for _, m := range r.Modules {
		fmt.Fprintf(w, "  %-32s %s  %s\n", m.ModuleName, m.Version, m.Path)
	}
	for _, f := range r.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if r.Copied > 0 {
		fmt.Fprintf(w, "  %d message file(s) copied\n", r.Copied)
	}
	fmt.Fprintf(w, "  loader: %s\n", r.Entrypoint)

	if !r.Failed() {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Failed:")
	for _, err := range r.Failures {
		fmt.Fprintf(w, "  %s: %v\n", gadgeterr.GadgetOf(err), err)
	}
	for _, name := range r.Pruned {
		fmt.Fprintf(w, "  %s: requires a gadget that failed\n", name)
	}
}
