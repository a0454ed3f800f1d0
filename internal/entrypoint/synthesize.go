package entrypoint

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/gadgetry/gadgetc/internal/branding"
	"github.com/gadgetry/gadgetc/internal/config"
	"github.com/gadgetry/gadgetc/internal/plan"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var loaderTemplate = template.Must(
	template.New("loader.js.tmpl").
		Funcs(template.FuncMap{"js": jsValue}).
		ParseFS(templateFS, "templates/loader.js.tmpl"),
)

type templateData struct {
	Generator     string
	Mode          string
	Namespace     string
	Registrations []Registration
}

// Synthesize renders the loader for every gadget in p. On error nothing is
// returned.
func Synthesize(cfg *config.Build, p *plan.BuildPlan, mode Mode, opts ...Option) (string, error) {
	regs, err := Registrations(cfg, p, mode, opts...)
	if err != nil {
		return "", err
	}
	return Render(cfg.Namespace, mode, regs)
}

// Render renders the loader for already derived registrations.
func Render(namespace string, mode Mode, regs []Registration) (string, error) {
	var buf bytes.Buffer
	err := loaderTemplate.Execute(&buf, templateData{
		Generator:     branding.CLIName(),
		Mode:          mode.String(),
		Namespace:     namespace,
		Registrations: regs,
	})
	if err != nil {
		return "", fmt.Errorf("rendering loader: %w", err)
	}
	return buf.String(), nil
}

// jsValue renders v as a JavaScript literal. JSON is a subset of
// JavaScript for the strings and string lists used here.
func jsValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("entrypoint: cannot render %T as JavaScript: %v", v, err))
	}
	return string(b)
}
