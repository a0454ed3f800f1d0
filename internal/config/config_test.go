package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if b.SrcDir != filepath.Join(dir, "src") {
		t.Errorf("SrcDir = %q, want %q", b.SrcDir, filepath.Join(dir, "src"))
	}
	if b.OutDir != filepath.Join(dir, "dist") {
		t.Errorf("OutDir = %q, want %q", b.OutDir, filepath.Join(dir, "dist"))
	}
	if b.Manifest != filepath.Join(dir, "gadgets.yaml") {
		t.Errorf("Manifest = %q", b.Manifest)
	}
	if !b.Minify || !b.Rollup {
		t.Errorf("Minify=%v Rollup=%v, want both true", b.Minify, b.Rollup)
	}
	if b.Namespace != "gadgets" {
		t.Errorf("Namespace = %q, want %q", b.Namespace, "gadgets")
	}
	if b.Jobs < 1 {
		t.Errorf("Jobs = %d, want >= 1", b.Jobs)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "namespace: wikitools\nout_dir: build\nminify: false\norigin: https://wiki.example.org/\n"
	if err := os.WriteFile(FilePath(dir), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GADGETC_BASE_PATH", "/static/gadgets/")

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if b.Namespace != "wikitools" {
		t.Errorf("Namespace = %q, want %q", b.Namespace, "wikitools")
	}
	if b.OutDir != filepath.Join(dir, "build") {
		t.Errorf("OutDir = %q", b.OutDir)
	}
	if b.Minify {
		t.Error("Minify = true, want false from config file")
	}
	if got, want := b.URL("A/A.module.js"), "https://wiki.example.org/static/gadgets/A/A.module.js"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestLoad_InvalidJobs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(FilePath(dir), []byte("jobs: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for jobs: 0, got nil")
	}
}

func TestBuild_URLWithoutOrigin(t *testing.T) {
	b := &Build{}
	if got := b.URL("A/style.css"); got != "/A/style.css" {
		t.Errorf("URL = %q, want %q", got, "/A/style.css")
	}
}

func TestBuild_ModuleName(t *testing.T) {
	b := &Build{ModulePrefix: "ext.gadget."}
	if got := b.ModuleName("Navigation"); got != "ext.gadget.Navigation" {
		t.Errorf("ModuleName = %q", got)
	}
}

func TestSetAndGet(t *testing.T) {
	dir := t.TempDir()
	if err := Set(dir, KeyNamespace, "tools"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := Get(dir, KeyNamespace)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != "tools" {
		t.Errorf("Get = %q, want %q", got, "tools")
	}
	if err := Set(dir, "no_such_key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}
