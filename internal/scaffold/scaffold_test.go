package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/manifest"
	"github.com/google/go-cmp/cmp"
)

func testConfig(t *testing.T) *config.Build {
	t.Helper()
	dir := t.TempDir()
	return &config.Build{
		Dir:       dir,
		Manifest:  filepath.Join(dir, "gadgets.yaml"),
		SrcDir:    filepath.Join(dir, "src"),
		OutDir:    filepath.Join(dir, "dist"),
		EntryFile: "load.js",
		Namespace: "gadgets",
		Jobs:      1,
	}
}

func TestNewData(t *testing.T) {
	d := NewData("Hot_Cat.v2", "wiki", true)
	if d.MessageKey != "wiki.i18n.Hot_Cat.v2" {
		t.Errorf("MessageKey = %q, want %q", d.MessageKey, "wiki.i18n.Hot_Cat.v2")
	}
	if d.CSSClass != "gadget-hot-cat-v2" {
		t.Errorf("CSSClass = %q, want %q", d.CSSClass, "gadget-hot-cat-v2")
	}
	if d.Version != "0.1.0" {
		t.Errorf("Version = %q, want 0.1.0", d.Version)
	}
}

func TestGenerate_NewManifest(t *testing.T) {
	cfg := testConfig(t)

	result, err := Generate(cfg, NewData("Clock", cfg.Namespace, false))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	assertFiles(t, result, []string{"Clock.js", "Clock.css"})
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	js := readGenerated(t, result, "Clock.js")
	assertContains(t, js, `addClass("gadget-clock")`)
	if strings.Contains(js, "i18n.use") {
		t.Error("Clock.js should not load messages without i18n")
	}

	doc, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def, ok := doc.Gadgets.Lookup("Clock")
	if !ok {
		t.Fatal("Clock not registered in manifest")
	}
	if diff := cmp.Diff([]string{"Clock.js"}, def.Scripts); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Clock"}, doc.Workspace.Enable); diff != "" {
		t.Errorf("enable mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_WithI18n(t *testing.T) {
	cfg := testConfig(t)

	result, err := Generate(cfg, NewData("Greeter", cfg.Namespace, true))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	assertFiles(t, result, []string{"Greeter.js", "Greeter.css", "i18n/en.json"})

	js := readGenerated(t, result, "Greeter.js")
	assertContains(t, js, `mw.libs["gadgets"].i18n.use("gadgets.i18n.Greeter")`)
	assertContains(t, readGenerated(t, result, "i18n/en.json"), `"greeting": "Hello from Greeter"`)

	doc, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def, _ := doc.Gadgets.Lookup("Greeter")
	if diff := cmp.Diff([]string{"i18n/en.json"}, def.I18n); diff != "" {
		t.Errorf("i18n mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_RejectsBadName(t *testing.T) {
	cfg := testConfig(t)
	for _, name := range []string{"", "-lead", "has space", "a/b"} {
		if _, err := Generate(cfg, NewData(name, cfg.Namespace, false)); err == nil {
			t.Errorf("Generate(%q) should fail", name)
		}
	}
	if _, err := os.Stat(cfg.Manifest); !os.IsNotExist(err) {
		t.Error("manifest should not be created for a rejected name")
	}
}

func TestGenerate_NonEmptyDir(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(cfg.SrcDir, "Clock")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "existing.js"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Generate(cfg, NewData("Clock", cfg.Namespace, false))
	if err == nil {
		t.Fatal("Generate() should fail on non-empty directory")
	}
	if !strings.Contains(err.Error(), "not empty") {
		t.Errorf("error = %q, should mention 'not empty'", err.Error())
	}
}

func TestGenerate_DuplicateName(t *testing.T) {
	cfg := testConfig(t)
	writeManifest(t, cfg.Manifest, "gadgets:\n  Clock:\n    scripts: [clock.js]\n")

	_, err := Generate(cfg, NewData("Clock", cfg.Namespace, false))
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("Generate() error = %v, want duplicate error", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.SrcDir, "Clock")); !os.IsNotExist(err) {
		t.Error("no files should be written for a duplicate gadget")
	}
}

func TestAddToManifest_PreservesDocument(t *testing.T) {
	cfg := testConfig(t)
	writeManifest(t, cfg.Manifest, `# Site gadgets
workspace:
  enableAll: true # everything ships

gadgets:
  # Keyboard helpers
  Navigation:
    scripts: [navigation.js]
`)

	if err := AddToManifest(cfg.Manifest, NewData("Clock", cfg.Namespace, false).Definition()); err != nil {
		t.Fatalf("AddToManifest() error: %v", err)
	}

	data, err := os.ReadFile(cfg.Manifest)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"# Site gadgets", "# everything ships", "# Keyboard helpers"} {
		assertContains(t, text, want)
	}
	if strings.Contains(text, "enable:") {
		t.Errorf("enable list should not be added under enableAll:\n%s", text)
	}

	doc, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff([]string{"Navigation", "Clock"}, doc.Gadgets.Names()); diff != "" {
		t.Errorf("gadget order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddToManifest_AppendsToEnable(t *testing.T) {
	cfg := testConfig(t)
	writeManifest(t, cfg.Manifest, "workspace:\n  enable: [Navigation]\ngadgets:\n  Navigation:\n    scripts: [n.js]\n")

	if err := AddToManifest(cfg.Manifest, NewData("Clock", cfg.Namespace, false).Definition()); err != nil {
		t.Fatalf("AddToManifest() error: %v", err)
	}
	doc, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff([]string{"Navigation", "Clock"}, doc.Workspace.Enable); diff != "" {
		t.Errorf("enable mismatch (-want +got):\n%s", diff)
	}
}

func TestAddToManifest_NotAMapping(t *testing.T) {
	cfg := testConfig(t)
	writeManifest(t, cfg.Manifest, "- just\n- a list\n")
	if err := AddToManifest(cfg.Manifest, &manifest.Definition{Name: "X"}); err == nil {
		t.Fatal("AddToManifest() should fail when the top level is not a mapping")
	}
}

// --- Helpers ---

func writeManifest(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertFiles(t *testing.T, result *Result, expected []string) {
	t.Helper()
	if diff := cmp.Diff(expected, result.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	for _, f := range expected {
		path := filepath.Join(result.OutputDir, filepath.FromSlash(f))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file %s to exist: %v", f, err)
		}
	}
}

func readGenerated(t *testing.T, result *Result, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(result.OutputDir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func assertContains(t *testing.T, content, substr string) {
	t.Helper()
	if !strings.Contains(content, substr) {
		t.Errorf("expected content to contain %q, got:\n%s", substr, content)
	}
}
