package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFile_Valid(t *testing.T) {
	result, err := ValidateFile(testPath("valid.yaml"))
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			t.Errorf("  path=%s keyword=%s message=%s", issue.Path, issue.Keyword, issue.Message)
		}
		t.Fatal("expected valid manifest")
	}
}

func TestValidateFile_Invalid(t *testing.T) {
	tests := []struct {
		file string
		desc string
	}{
		{"invalid-unknown-field.yaml", "unknown gadget field"},
		{"invalid-condition.yaml", "condition given as mapping"},
		{"invalid-bad-name.yaml", "gadget name violates pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) unexpected error: %v", tt.file, err)
			}
			if result.Valid {
				t.Errorf("expected invalid for %s (%s), got valid", tt.file, tt.desc)
			}
			if len(result.Issues) == 0 {
				t.Errorf("expected at least one issue for %s", tt.file)
			}
		})
	}
}

func TestValidateFile_InvalidYAML(t *testing.T) {
	if _, err := ValidateFile(testPath("invalid-not-yaml.yaml")); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestValidate_Empty(t *testing.T) {
	result, err := Validate([]byte(""))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Errorf("empty manifest should be valid, got %v", result.Issues)
	}
}

func TestValidate_SchemaCompiles(t *testing.T) {
	schema, err := getSchema()
	if err != nil {
		t.Fatalf("getSchema() error: %v", err)
	}
	if schema == nil {
		t.Fatal("getSchema() returned nil schema")
	}
}

func TestCheck_SemanticRules(t *testing.T) {
	doc, err := ParseFile(testPath("invalid-semantic.yaml"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	issues := Check(doc)

	wantKeywords := map[string]int{
		"semver":    1,
		"extension": 2,
		"language":  1, // english.txt; "bad!.json" is only a lint
		"requires":  0, // self-requires surface as dependency cycles
	}
	got := make(map[string]int)
	for _, issue := range issues {
		got[issue.Keyword]++
	}
	for kw, n := range wantKeywords {
		if got[kw] != n {
			t.Errorf("issues with keyword %q = %d, want %d (all: %v)", kw, got[kw], n, issues)
		}
	}
}

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		file    string
		want    string
		wantErr bool
	}{
		{"i18n/en.json", "en", false},
		{"pt-BR.json", "pt-BR", false},
		{"i18n/en.yaml", "", true},
		{"messages.json", "messages", false},
		{"bad!.json", "bad!", false},
		{"i18n/.json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := LanguageOf(tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LanguageOf(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LanguageOf(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestLint_NonTagI18nNames(t *testing.T) {
	doc, err := Parse([]byte(`gadgets:
  A:
    scripts: [a.js]
    i18n: [i18n/en.json, messages.json, notes.txt]
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	issues := Lint(doc)
	if len(issues) != 1 {
		t.Fatalf("Lint() = %v, want one issue", issues)
	}
	if issues[0].Path != "/gadgets/A/i18n/1" || issues[0].Keyword != "language" {
		t.Errorf("Lint() issue = %+v", issues[0])
	}
}

func TestLoad_AcceptsNonTagI18nNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gadgets.yaml")
	data := "workspace:\n  enableAll: true\ngadgets:\n  A:\n    scripts: [a.js]\n    i18n: [messages.json]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestInvalidError_ListsIssues(t *testing.T) {
	err := &InvalidError{File: "gadgets.yaml", Issues: []ValidationIssue{
		{Path: "/gadgets/A", Message: "bad"},
	}}
	if !strings.Contains(err.Error(), "/gadgets/A: bad") {
		t.Errorf("Error() = %q, want it to list the issue", err.Error())
	}
}
