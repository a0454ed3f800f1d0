package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/gadgetry/gadgetc/internal/branding"
	"github.com/spf13/viper"
)

const fileType = "yaml"

// Configuration keys understood in gadgetc.yaml and as GADGETC_<KEY>.
const (
	KeyManifest     = "manifest"
	KeySrcDir       = "src_dir"
	KeyOutDir       = "out_dir"
	KeyEntryFile    = "entry_file"
	KeyNamespace    = "namespace"
	KeyOrigin       = "origin"
	KeyBasePath     = "base_path"
	KeyModulePrefix = "module_prefix"
	KeyJobs         = "jobs"
	KeyMinify       = "minify"
	KeyRollup       = "rollup"
)

// Keys lists every configuration key in display order.
var Keys = []string{
	KeyManifest, KeySrcDir, KeyOutDir, KeyEntryFile, KeyNamespace, KeyOrigin,
	KeyBasePath, KeyModulePrefix, KeyJobs, KeyMinify, KeyRollup,
}

// Build holds the resolved settings for one build invocation. Paths are
// absolute.
type Build struct {
	Dir          string // project directory
	Manifest     string // gadget manifest file
	SrcDir       string // root containing one subdirectory per gadget
	OutDir       string // build output root
	EntryFile    string // generated loader file name, relative to OutDir
	Namespace    string // localization namespace
	Origin       string // server origin the output is served from
	BasePath     string // URL path under Origin that maps to OutDir
	ModulePrefix string // prefix for host module names
	Jobs         int    // parallelism for the wrap phase
	Minify       bool
	Rollup       bool // wrap each gadget into a single wire artifact
	Clean        bool // empty OutDir before writing; set from the command line only
}

// FilePath returns the path of the project config file in dir.
func FilePath(dir string) string {
	return filepath.Join(dir, branding.ConfigFile())
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(FilePath(dir))
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	v.SetDefault(KeyManifest, branding.ManifestFile())
	v.SetDefault(KeySrcDir, "src")
	v.SetDefault(KeyOutDir, "dist")
	v.SetDefault(KeyEntryFile, "load.js")
	v.SetDefault(KeyNamespace, branding.Namespace())
	v.SetDefault(KeyOrigin, "")
	v.SetDefault(KeyBasePath, "")
	v.SetDefault(KeyModulePrefix, branding.ModulePrefix())
	v.SetDefault(KeyJobs, runtime.NumCPU())
	v.SetDefault(KeyMinify, true)
	v.SetDefault(KeyRollup, true)
	return v
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

// Load resolves the build settings for the project in dir.
func Load(dir string) (*Build, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory %s: %w", dir, err)
	}

	v := newViper(absDir)
	if err := readConfig(v); err != nil {
		return nil, err
	}

	b := &Build{
		Dir:          absDir,
		Manifest:     resolvePath(absDir, v.GetString(KeyManifest)),
		SrcDir:       resolvePath(absDir, v.GetString(KeySrcDir)),
		OutDir:       resolvePath(absDir, v.GetString(KeyOutDir)),
		EntryFile:    filepath.ToSlash(v.GetString(KeyEntryFile)),
		Namespace:    v.GetString(KeyNamespace),
		Origin:       strings.TrimSuffix(v.GetString(KeyOrigin), "/"),
		BasePath:     v.GetString(KeyBasePath),
		ModulePrefix: v.GetString(KeyModulePrefix),
		Jobs:         v.GetInt(KeyJobs),
		Minify:       v.GetBool(KeyMinify),
		Rollup:       v.GetBool(KeyRollup),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks settings that would otherwise fail late in the build.
func (b *Build) Validate() error {
	switch {
	case strings.TrimSpace(b.Namespace) == "":
		return fmt.Errorf("config: %s must not be empty", KeyNamespace)
	case b.EntryFile == "" || filepath.IsAbs(b.EntryFile) || strings.HasPrefix(filepath.Clean(b.EntryFile), ".."):
		return fmt.Errorf("config: %s %q must be a relative path inside the output directory", KeyEntryFile, b.EntryFile)
	case b.Jobs < 1:
		return fmt.Errorf("config: %s must be at least 1, got %d", KeyJobs, b.Jobs)
	case b.SrcDir == b.OutDir:
		return fmt.Errorf("config: %s and %s must differ", KeySrcDir, KeyOutDir)
	}
	return nil
}

// ModuleName returns the host module name for a gadget.
func (b *Build) ModuleName(gadget string) string {
	return b.ModulePrefix + gadget
}

// URL returns the public URL of a file relative to OutDir.
func (b *Build) URL(rel string) string {
	parts := []string{b.Origin}
	if p := strings.Trim(b.BasePath, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, strings.TrimPrefix(filepath.ToSlash(rel), "/"))
	return strings.Join(parts, "/")
}

// Get returns the effective value of key for the project in dir.
func Get(dir, key string) (string, error) {
	if !slices.Contains(Keys, key) {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	v := newViper(dir)
	if err := readConfig(v); err != nil {
		return "", err
	}
	return v.GetString(key), nil
}

// Set writes key=value to the project config file, creating it if needed.
func Set(dir, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	// Only the file's own values are rewritten; env and defaults stay out.
	v := viper.New()
	v.SetConfigFile(FilePath(dir))
	v.SetConfigType(fileType)
	if err := readConfig(v); err != nil {
		return err
	}
	v.Set(key, value)

	configFile := FilePath(dir)
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
