package i18n

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/gadgeterr"
	"github.com/gadgetry/gadgetc/internal/manifest"
	"github.com/gadgetry/gadgetc/internal/plan"
	"github.com/google/go-cmp/cmp"
)

const ns = "gadgets"

func testPlan(t *testing.T) (*config.Build, *plan.BuildPlan) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Build{Dir: dir, SrcDir: filepath.Join(dir, "src"), Namespace: ns}
	p, err := plan.Resolve(&manifest.Document{
		Workspace: manifest.WorkspacePolicy{EnableAll: true},
		Gadgets: manifest.Gadgets{
			{Name: "A", Scripts: []string{"a.js"}},
			{Name: "B", Scripts: []string{"b.js", "lib/util.ts"}, Styles: []string{"b.css"}, I18n: []string{"en.json"}},
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return cfg, p
}

func TestComputeWatchSet(t *testing.T) {
	cfg, p := testPlan(t)
	ws := ComputeWatchSet(cfg, p)

	want := WatchSet{
		ModuleID(filepath.Join(cfg.SrcDir, "B", "b.js")):         "B",
		ModuleID(filepath.Join(cfg.SrcDir, "B", "lib", "util.ts")): "B",
	}
	if diff := cmp.Diff(want, ws); diff != "" {
		t.Errorf("WatchSet mismatch (-want +got):\n%s", diff)
	}
	if ws.Contains(NewModuleID(filepath.Join(cfg.SrcDir, "A", "a.js"))) {
		t.Error("gadget without i18n must not be watched")
	}
	if !ws.Contains(NewModuleID(filepath.Join(cfg.SrcDir, "B", "lib", "..", "b.js"))) {
		t.Error("module ids must be compared after cleaning")
	}
}

func TestTransform_EndToEnd(t *testing.T) {
	cfg, p := testPlan(t)
	ws := ComputeWatchSet(cfg, p)

	aID := NewModuleID(filepath.Join(cfg.SrcDir, "A", "a.js"))
	bID := NewModuleID(filepath.Join(cfg.SrcDir, "B", "b.js"))
	code := "console.log('hello');\n"

	got, err := Transform(code, aID, ns, ws)
	if err != nil {
		t.Fatalf("Transform(A): %v", err)
	}
	if got != code {
		t.Errorf("Transform(A) changed unwatched code:\n%s", got)
	}

	got, err = Transform(code, bID, ns, ws)
	if err != nil {
		t.Fatalf("Transform(B): %v", err)
	}
	if n := strings.Count(got, Marker()); n != 1 {
		t.Errorf("prologue count = %d, want 1:\n%s", n, got)
	}
	want := `/* gadgetc:i18n */ mw.libs["gadgets"].i18n.use("gadgets.i18n.B");` + "\n" + code
	if got != want {
		t.Errorf("Transform(B) =\n%s\nwant\n%s", got, want)
	}
}

func TestTransform_Placement(t *testing.T) {
	prologue := Prologue(ns, "B")
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "empty module",
			code: "",
			want: prologue,
		},
		{
			name: "hashbang",
			code: "#!/usr/bin/env node\nrun();\n",
			want: "#!/usr/bin/env node\n" + prologue + "\nrun();\n",
		},
		{
			name: "use strict with semicolon",
			code: "'use strict';\nrun();\n",
			want: "'use strict';\n" + prologue + "\nrun();\n",
		},
		{
			name: "several directives without semicolons",
			code: "\"use strict\"\n\"use asm\"\nrun()\n",
			want: "\"use strict\"\n\"use asm\"\n" + prologue + "\nrun()\n",
		},
		{
			name: "leading comment stays after prologue",
			code: "/* license */\nrun();\n",
			want: prologue + "\n/* license */\nrun();\n",
		},
		{
			name: "string expression is not a directive",
			code: "'abc'.split('').forEach(run);\n",
			want: prologue + "\n'abc'.split('').forEach(run);\n",
		},
		{
			name: "string continued on next line is not a directive",
			code: "'use strict'\n+ run();\n",
			want: prologue + "\n'use strict'\n+ run();\n",
		},
		{
			name: "imports",
			code: "import { x } from './x.js';\nx();\n",
			want: prologue + "\nimport { x } from './x.js';\nx();\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := WatchSet{"/src/B/b.js": "B"}
			got, err := Transform(tt.code, "/src/B/b.js", ns, ws)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}

			again, err := Transform(got, "/src/B/b.js", ns, ws)
			if err != nil {
				t.Fatalf("second Transform: %v", err)
			}
			if again != got {
				t.Errorf("second Transform not idempotent:\n%s", again)
			}
		})
	}
}

func TestTransform_TypeScript(t *testing.T) {
	ws := WatchSet{"/src/B/util.ts": "B"}
	code := "export function greet(name: string): string {\n  return `hi ${name}`;\n}\n"
	got, err := Transform(code, "/src/B/util.ts", ns, ws)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.HasPrefix(got, Prologue(ns, "B")) {
		t.Errorf("prologue missing:\n%s", got)
	}
}

func TestTransform_Malformed(t *testing.T) {
	ws := WatchSet{"/src/B/b.js": "B"}
	tests := []struct {
		name string
		code string
	}{
		{"syntax error", "function (\n"},
		{"unterminated directive", "'use strict\nrun();\n"},
		{"unterminated comment", "/* open\nrun();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transform(tt.code, "/src/B/b.js", ns, ws)
			var trErr *gadgeterr.TransformError
			if !errors.As(err, &trErr) {
				t.Fatalf("error = %v, want TransformError", err)
			}
			if trErr.ModuleID != "/src/B/b.js" || trErr.Gadget != "B" {
				t.Errorf("TransformError = %+v, want module /src/B/b.js of gadget B", trErr)
			}
		})
	}

	// Malformed code outside the watch set is not inspected.
	if _, err := Transform("function (\n", "/src/A/a.js", ns, ws); err != nil {
		t.Errorf("unwatched module: unexpected error %v", err)
	}
}

func TestHook_Concurrent(t *testing.T) {
	ws := WatchSet{NewModuleID("/src/B/b.js"): "B"}
	hook := Hook(ns, ws)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := hook("/src/B/b.js", "run();\n")
			if err != nil {
				t.Errorf("hook: %v", err)
				return
			}
			results[i] = out
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result %d differs:\n%s\nvs\n%s", i, r, results[0])
		}
	}
}

func TestNewModuleID_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "B")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "b.js"), []byte("b();\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "linked")
	if err := os.Symlink(filepath.Join(dir, "src"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg := &config.Build{Dir: dir, SrcDir: link, Namespace: ns}
	p, err := plan.Resolve(&manifest.Document{
		Workspace: manifest.WorkspacePolicy{EnableAll: true},
		Gadgets:   manifest.Gadgets{{Name: "B", Scripts: []string{"b.js"}, I18n: []string{"en.json"}}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ws := ComputeWatchSet(cfg, p)

	// The bundler reports modules by their real path.
	got, err := Hook(ns, ws)(filepath.Join(src, "b.js"), "b();\n")
	if err != nil {
		t.Fatalf("hook: %v", err)
	}
	if !strings.HasPrefix(got, Prologue(ns, "B")) {
		t.Errorf("prologue not injected through a symlinked source root:\n%s", got)
	}
}

func TestMarker(t *testing.T) {
	if got := Marker(); got != "/* gadgetc:i18n */" {
		t.Errorf("Marker() = %q", got)
	}
	if !strings.HasPrefix(Prologue(ns, "B"), Marker()) {
		t.Errorf("Prologue does not open with the marker: %q", Prologue(ns, "B"))
	}
}
