package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/i18n"
	"github.com/gadgetry/gadgetc/internal/manifest"
)

//go:embed templates
var scaffoldFS embed.FS

// namePattern mirrors the gadget name rule of the manifest schema.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Data holds all template variables available to scaffold templates.
type Data struct {
	Name        string // e.g., "Navigation"
	Description string
	Version     string
	Namespace   string
	I18n        bool
	MessageKey  string // Derived: <namespace>.i18n.<name>
	CSSClass    string // Derived: gadget-<name>, lowercased
	Greeting    string
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir  string
	Files      []string // relative to OutputDir
	Definition *manifest.Definition
	Warnings   []string
}

// NewData creates a Data with derived fields populated.
func NewData(name, namespace string, withI18n bool) *Data {
	return &Data{
		Name:        name,
		Description: "Gadget " + name,
		Version:     "0.1.0",
		Namespace:   namespace,
		I18n:        withI18n,
		MessageKey:  i18n.Key(namespace, name),
		CSSClass:    "gadget-" + strings.ToLower(strings.NewReplacer(".", "-", "_", "-").Replace(name)),
		Greeting:    "Hello from " + name,
	}
}

type file struct {
	template string
	out      string
}

func (d *Data) files() []file {
	files := []file{
		{"gadget.js.tmpl", d.Name + ".js"},
		{"gadget.css.tmpl", d.Name + ".css"},
	}
	if d.I18n {
		files = append(files, file{"en.json.tmpl", path.Join("i18n", "en.json")})
	}
	return files
}

// Definition returns the manifest entry for the generated files.
func (d *Data) Definition() *manifest.Definition {
	def := &manifest.Definition{
		Name:        d.Name,
		Description: d.Description,
		Version:     d.Version,
		Scripts:     []string{d.Name + ".js"},
		Styles:      []string{d.Name + ".css"},
	}
	if d.I18n {
		def.I18n = []string{"i18n/en.json"}
	}
	return def
}

// Generate writes a new gadget under cfg.SrcDir and registers it in the
// manifest at cfg.Manifest, creating the manifest if needed.
func Generate(cfg *config.Build, data *Data) (*Result, error) {
	if !namePattern.MatchString(data.Name) {
		return nil, fmt.Errorf("invalid gadget name %q: use letters, digits, '.', '_' and '-'", data.Name)
	}
	outputDir := filepath.Join(cfg.SrcDir, data.Name)

	// Check for existing files to prevent accidental overwrites.
	if entries, err := os.ReadDir(outputDir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}

	// Register first: a name clash must not leave files behind.
	def := data.Definition()
	if err := AddToManifest(cfg.Manifest, def); err != nil {
		return nil, err
	}

	result := &Result{OutputDir: outputDir, Definition: def}
	funcs := template.FuncMap{"quote": jsString}
	for _, f := range data.files() {
		tmplPath := path.Join("templates", "gadget", f.template)
		tmplBytes, err := scaffoldFS.ReadFile(tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", tmplPath, err)
		}
		tmpl, err := template.New(f.template).Funcs(funcs).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", f.template, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", f.template, err)
		}

		outPath := filepath.Join(outputDir, filepath.FromSlash(f.out))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", outPath, err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		result.Files = append(result.Files, f.out)
	}

	// Validate the updated manifest against the JSON Schema.
	valResult, err := manifest.ValidateFile(cfg.Manifest)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not validate manifest: %v", err))
	case !valResult.Valid:
		for _, issue := range valResult.Issues {
			result.Warnings = append(result.Warnings, issue.String())
		}
	}
	return result, nil
}

func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	return string(b), err
}
