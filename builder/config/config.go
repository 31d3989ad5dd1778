package config

import (
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// BlogFile is the primary site configuration file. ConfigFile is the
// fallback name accepted for convenience.
const (
	BlogFile   = "blog.yaml"
	ConfigFile = "config.yaml"
)

type Author struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SocialCardsConfig styles the generated share images.
type SocialCardsConfig struct {
	Background  string   `yaml:"background"`  // Fallback fill color
	Gradient    []string `yaml:"gradient"`    // Gradient stops, hex
	Angle       int      `yaml:"angle"`       // Gradient angle in degrees
	TextColor   string   `yaml:"textColor"`   // Title and description color
	AccentColor string   `yaml:"accentColor"` // Brand line and date color
}

type Generators struct {
	RSS         bool `yaml:"rss"`
	Sitemap     bool `yaml:"sitemap"`
	SocialCards bool `yaml:"socialCards"`
}

type Features struct {
	Generators Generators `yaml:"generators"`
	Diagrams   bool       `yaml:"diagrams"` // D2 fenced blocks rendered to SVG
	Assets     bool       `yaml:"assets"`   // esbuild pipeline for CSS/JS
}

// Config holds the site-level settings from blog.yaml. Freeze options
// live in FreezeConfig and are loaded separately from freezing.yaml.
type Config struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Language     string `yaml:"language"`
	Author       Author `yaml:"author"`
	PostsPerPage int    `yaml:"postsPerPage"`

	PageRoot    string `yaml:"pageRoot"`    // Standalone HTML pages
	PostRoot    string `yaml:"postRoot"`    // Markdown posts
	TemplateDir string `yaml:"templateDir"` // layout.html and friends
	StaticDir   string `yaml:"staticDir"`
	FontsDir    string `yaml:"fontsDir"` // TTF fonts for social cards
	CacheDir    string `yaml:"cacheDir"`

	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	Compress       bool `yaml:"compress"`       // Minify HTML, fingerprint assets
	CompressImages bool `yaml:"compressImages"` // Convert static images to WebP
	ImageWorkers   int  `yaml:"imageWorkers"`

	SocialCards SocialCardsConfig `yaml:"socialCards"`
	Features    Features          `yaml:"features"`

	IncludeDrafts bool `yaml:"-"`
	ForceRebuild  bool `yaml:"-"`
	IsDev         bool `yaml:"-"`
}

// Default returns the site configuration used when blog.yaml is
// missing or unreadable.
func Default() *Config {
	return &Config{
		Title:        "Frost Blog",
		Description:  "Notes frozen in time",
		Language:     "en",
		PostsPerPage: 8,

		PageRoot:    "page",
		PostRoot:    "post",
		TemplateDir: "templates",
		StaticDir:   "static",
		FontsDir:    "fonts",
		CacheDir:    ".frost-cache",

		Host: "127.0.0.1",
		Port: 8000,

		Compress:       true,
		CompressImages: false,
		ImageWorkers:   8,

		SocialCards: SocialCardsConfig{
			Background:  "#0b1021",
			Gradient:    []string{"#0b1021", "#1b2a4a"},
			Angle:       135,
			TextColor:   "#f5f7fa",
			AccentColor: "#8ec5ff",
		},

		Features: Features{
			Generators: Generators{RSS: true, Sitemap: true, SocialCards: true},
			Diagrams:   true,
			Assets:     true,
		},
	}
}

// Load reads blog.yaml (config.yaml as fallback) and applies CLI
// overrides. Invalid YAML falls back to the defaults with a warning
// rather than aborting.
func Load(args []string) *Config {
	cfg := Default()

	data, err := os.ReadFile(BlogFile)
	if err != nil {
		data, err = os.ReadFile(ConfigFile)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("⚠️ Invalid site config, using defaults: %v", err)
			cfg = Default()
		}
	}

	fs := flag.NewFlagSet("frost", flag.ContinueOnError)
	drafts := fs.Bool("drafts", false, "Include posts without a date")
	compress := fs.Bool("compress", cfg.Compress, "Minify HTML and fingerprint assets")
	force := fs.Bool("force", false, "Ignore the freeze cache")
	// Freeze flags, accepted here so one invocation can mix both kinds.
	// ApplyFreezeFlags reads them.
	_ = fs.String("baseurl", "", "Base URL frozen into absolute links")
	_ = fs.String("dest", "", "Destination directory")
	_ = fs.Bool("relative", false, "Freeze relative URLs")
	_ = fs.Bool("debug", false, "Verbose error reports")
	if err := fs.Parse(args); err == nil {
		cfg.IncludeDrafts = *drafts
		cfg.Compress = *compress
		cfg.ForceRebuild = *force
	}

	cfg.validate()
	return cfg
}

// SetDevMode marks the config for serve-time behavior: no asset
// fingerprinting, relaxed cache durability.
func SetDevMode(cfg *Config, dev bool) {
	cfg.IsDev = dev
	if dev {
		cfg.Compress = false
	}
}

// validate clamps values to workable ranges.
func (c *Config) validate() {
	if c.PostsPerPage < 1 {
		c.PostsPerPage = 8
	}
	if c.PostsPerPage > 100 {
		c.PostsPerPage = 100
	}
	if c.ImageWorkers < 1 {
		c.ImageWorkers = 8
	}
	if c.ImageWorkers > 32 {
		c.ImageWorkers = 32
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = 8000
	}
	if c.PageRoot == "" {
		c.PageRoot = "page"
	}
	if c.PostRoot == "" {
		c.PostRoot = "post"
	}
	if c.TemplateDir == "" {
		c.TemplateDir = "templates"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".frost-cache"
	}
}
