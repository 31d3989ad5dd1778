package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// FreezeFile is the freeze configuration read next to blog.yaml.
const FreezeFile = "freezing.yaml"

// FreezeConfig holds every option the freezer understands. Values are
// immutable after LoadFreeze; the freezer receives a copy.
type FreezeConfig struct {
	Debug                     bool     `yaml:"debug"`
	BaseURL                   string   `yaml:"baseURL"`
	Destination               string   `yaml:"destination"`
	RelativeURLs              bool     `yaml:"relativeURLs"`
	RemoveExtraFiles          bool     `yaml:"removeExtraFiles"`
	DestinationIgnorePatterns []string `yaml:"destinationIgnorePatterns"`
	SuppressedWarnings        []string `yaml:"suppressedWarnings"`
}

var freezeOptions = map[string]bool{
	"debug":                     true,
	"baseURL":                   true,
	"destination":               true,
	"relativeURLs":              true,
	"removeExtraFiles":          true,
	"destinationIgnorePatterns": true,
	"suppressedWarnings":        true,
}

// OptionNames returns the recognized freeze option names, sorted.
func OptionNames() []string {
	names := make([]string, 0, len(freezeOptions))
	for name := range freezeOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFreezeConfig returns the documented defaults: an absolute
// localhost base URL, a "build" destination, extra-file removal on,
// dotfiles in the destination left alone, and the harmless
// "Nothing frozen" warnings silenced.
func DefaultFreezeConfig() FreezeConfig {
	return FreezeConfig{
		Debug:                     false,
		BaseURL:                   "http://localhost/",
		Destination:               "build",
		RelativeURLs:              false,
		RemoveExtraFiles:          true,
		DestinationIgnorePatterns: []string{".*"},
		SuppressedWarnings:        []string{"Nothing frozen*"},
	}
}

// LoadFreeze reads the freeze configuration file at path and overlays
// it onto the defaults. A missing file yields the defaults. Unknown
// keys fail with *UnknownOptionError, malformed or invalid values with
// *ConfigError. Loading the same file twice yields identical configs.
func LoadFreeze(path string) (FreezeConfig, error) {
	cfg := DefaultFreezeConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.validate()
		}
		return cfg, &ConfigError{Reason: fmt.Sprintf("cannot read %s", path), Err: err}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, &ConfigError{Reason: fmt.Sprintf("malformed %s", path), Err: err}
	}
	for key := range raw {
		if !freezeOptions[key] {
			return cfg, &UnknownOptionError{Option: key}
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Reason: fmt.Sprintf("malformed %s", path), Err: err}
	}

	return cfg, cfg.validate()
}

// ApplyFreezeFlags overlays CLI overrides onto a loaded freeze
// configuration, the same way Load applies site flags. The result is
// validated again, so a -baseurl override is checked like a file
// value. Site flags are declared but ignored; the freeze invocation
// carries both kinds.
func ApplyFreezeFlags(cfg FreezeConfig, args []string) (FreezeConfig, error) {
	fs := flag.NewFlagSet("freeze", flag.ContinueOnError)
	baseURL := fs.String("baseurl", cfg.BaseURL, "Base URL frozen into absolute links")
	dest := fs.String("dest", cfg.Destination, "Destination directory")
	relative := fs.Bool("relative", cfg.RelativeURLs, "Freeze relative URLs")
	debug := fs.Bool("debug", cfg.Debug, "Verbose error reports")
	_ = fs.Bool("drafts", false, "Include posts without a date")
	_ = fs.Bool("compress", false, "Minify HTML and fingerprint assets")
	_ = fs.Bool("force", false, "Ignore the freeze cache")
	if err := fs.Parse(args); err == nil {
		cfg.BaseURL = *baseURL
		cfg.Destination = *dest
		cfg.RelativeURLs = *relative
		cfg.Debug = *debug
	}
	return cfg, cfg.validate()
}

// Get returns the value of a recognized option by its file key.
func (c FreezeConfig) Get(name string) (interface{}, error) {
	switch name {
	case "debug":
		return c.Debug, nil
	case "baseURL":
		return c.BaseURL, nil
	case "destination":
		return c.Destination, nil
	case "relativeURLs":
		return c.RelativeURLs, nil
	case "removeExtraFiles":
		return c.RemoveExtraFiles, nil
	case "destinationIgnorePatterns":
		return c.DestinationIgnorePatterns, nil
	case "suppressedWarnings":
		return c.SuppressedWarnings, nil
	default:
		return nil, &UnknownOptionError{Option: name}
	}
}

// Options returns the full option mapping. Templates see this under
// the Freeze key of the render context.
func (c FreezeConfig) Options() map[string]interface{} {
	return map[string]interface{}{
		"debug":                     c.Debug,
		"baseURL":                   c.BaseURL,
		"destination":               c.Destination,
		"relativeURLs":              c.RelativeURLs,
		"removeExtraFiles":          c.RemoveExtraFiles,
		"destinationIgnorePatterns": c.DestinationIgnorePatterns,
		"suppressedWarnings":        c.SuppressedWarnings,
	}
}

// CompileIgnores compiles the destination ignore patterns. Patterns
// use fnmatch semantics: * crosses path separators, so the default
// ".*" protects dotfiles and everything beneath dot-directories.
func (c FreezeConfig) CompileIgnores() ([]glob.Glob, error) {
	return compilePatterns(c.DestinationIgnorePatterns)
}

// CompileSuppressions compiles the warning suppression patterns.
func (c FreezeConfig) CompileSuppressions() ([]glob.Glob, error) {
	return compilePatterns(c.SuppressedWarnings)
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// validate rejects option values the freezer could not act on. The
// destination itself is created on demand later; only its declaration
// is checked here.
func (c FreezeConfig) validate() error {
	if strings.TrimSpace(c.Destination) == "" {
		return &ConfigError{Option: "destination", Reason: "must not be empty"}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return &ConfigError{Option: "baseURL", Reason: fmt.Sprintf("%q is not a valid URL", c.BaseURL), Err: err}
	}
	if !c.RelativeURLs && (!u.IsAbs() || u.Host == "") {
		return &ConfigError{Option: "baseURL", Reason: fmt.Sprintf("%q is not an absolute URL", c.BaseURL)}
	}

	if _, err := c.CompileIgnores(); err != nil {
		return &ConfigError{Option: "destinationIgnorePatterns", Reason: "invalid pattern", Err: err}
	}
	if _, err := c.CompileSuppressions(); err != nil {
		return &ConfigError{Option: "suppressedWarnings", Reason: "invalid pattern", Err: err}
	}

	return nil
}
