// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	ConfigFile   string `yaml:"config_file"`
	ManifestFile string `yaml:"manifest_file"`
	ModulePrefix string `yaml:"module_prefix"`
	Namespace    string `yaml:"namespace"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:      "gadgetc",
			DisplayName:  "Gadgetc",
			Description:  "Build orchestrator for wiki gadget bundles",
			EnvPrefix:    "GADGETC",
			GoModule:     "github.com/gadgetry/gadgetc",
			ConfigFile:   "gadgetc.yaml",
			ManifestFile: "gadgets.yaml",
			ModulePrefix: "ext.gadget.",
			Namespace:    "gadgets",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "gadgetc").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "GADGETC").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// ConfigFile returns the project configuration file name (e.g., "gadgetc.yaml").
func ConfigFile() string { load(); return defaults.ConfigFile }

// ManifestFile returns the default gadget manifest file name.
func ManifestFile() string { load(); return defaults.ManifestFile }

// ModulePrefix returns the prefix prepended to gadget names to form host
// module names (e.g., "ext.gadget.").
func ModulePrefix() string { load(); return defaults.ModulePrefix }

// Namespace returns the default localization namespace.
func Namespace() string { load(); return defaults.Namespace }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("OUT_DIR") → "GADGETC_OUT_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
