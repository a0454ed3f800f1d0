package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/manifest.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation problem.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/gadgets/A/scripts/0")
	Message string // Human-readable error message
	Keyword string // Schema keyword or semantic rule that failed
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// InvalidError is returned by Load when a manifest fails validation.
type InvalidError struct {
	File   string
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "manifest %s is invalid (%d issues)", e.File, len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("manifest.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("manifest.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate validates raw YAML bytes against the manifest JSON schema.
// The error return is for YAML syntax or schema compilation failures;
// validation issues are returned in the ValidationResult.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	// Round-trip through JSON so the validator sees json.Number values.
	raw = normalizeYAML(raw)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// ValidateFile reads a file and validates it against the manifest schema.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf errors
// with specific property information.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		msg := ""
		if ve.ErrorKind != nil {
			if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Skip generic container errors that aren't informative.
		if keyword == "anyOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types. Maps
// with non-string keys (e.g. a gadget named 404) get their keys stringified.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []interface{}:
		a := make([]interface{}, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}

var (
	scriptExts = map[string]bool{".js": true, ".mjs": true, ".cjs": true, ".jsx": true, ".ts": true, ".tsx": true}
	styleExts  = map[string]bool{".css": true}
)

// Check applies the semantic rules the schema cannot express: versions must
// be semver and file extensions must match their list. Requirement cycles,
// including a gadget requiring itself, are left to dependency ordering.
func Check(doc *Document) []ValidationIssue {
	var issues []ValidationIssue
	add := func(p, keyword, format string, args ...interface{}) {
		issues = append(issues, ValidationIssue{Path: p, Keyword: keyword, Message: fmt.Sprintf(format, args...)})
	}

	for i, name := range doc.Workspace.Enable {
		if strings.TrimSpace(name) == "" {
			add(fmt.Sprintf("/workspace/enable/%d", i), "name", "gadget name must not be empty")
		}
	}
	for i, name := range doc.Workspace.Disable {
		if strings.TrimSpace(name) == "" {
			add(fmt.Sprintf("/workspace/disable/%d", i), "name", "gadget name must not be empty")
		}
	}

	for _, g := range doc.Gadgets {
		base := "/gadgets/" + g.Name
		if g.Name == "" {
			add(base, "name", "gadget name must not be empty")
		}
		if g.Version != "" {
			if _, err := semver.NewVersion(g.Version); err != nil {
				add(base+"/version", "semver", "version %q is not a semantic version: %v", g.Version, err)
			}
		}
		for i, s := range g.Scripts {
			if !scriptExts[strings.ToLower(path.Ext(s))] {
				add(fmt.Sprintf("%s/scripts/%d", base, i), "extension", "%q is not a script file", s)
			}
		}
		for i, s := range g.Styles {
			if !styleExts[strings.ToLower(path.Ext(s))] {
				add(fmt.Sprintf("%s/styles/%d", base, i), "extension", "%q is not a stylesheet", s)
			}
		}
		for i, f := range g.I18n {
			if _, err := LanguageOf(f); err != nil {
				add(fmt.Sprintf("%s/i18n/%d", base, i), "language", "%v", err)
			}
		}
	}
	return issues
}

// LanguageOf returns the language code an i18n file provides, taken from
// its base name ("i18n/pt-BR.json" → "pt-BR"). The loader requests
// "<code>.json", so files must be JSON; the code itself is free-form and
// only compared against the user language at runtime.
func LanguageOf(file string) (string, error) {
	base := path.Base(strings.ReplaceAll(file, "\\", "/"))
	ext := path.Ext(base)
	if strings.ToLower(ext) != ".json" {
		return "", fmt.Errorf("i18n file %q must be a .json file", file)
	}
	code := strings.TrimSuffix(base, ext)
	if code == "" {
		return "", fmt.Errorf("i18n file %q has no name", file)
	}
	return code, nil
}

// Lint reports advisory issues that do not stop a build: i18n files whose
// names are not BCP 47 language tags never match a user language and are
// only served as the fallback.
func Lint(doc *Document) []ValidationIssue {
	var issues []ValidationIssue
	for _, g := range doc.Gadgets {
		for i, f := range g.I18n {
			code, err := LanguageOf(f)
			if err != nil {
				continue // reported by Check
			}
			if _, err := language.Parse(code); err != nil {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("/gadgets/%s/i18n/%d", g.Name, i),
					Keyword: "language",
					Message: fmt.Sprintf("%q is not a language tag; it is used only as a fallback", code),
				})
			}
		}
	}
	return issues
}
