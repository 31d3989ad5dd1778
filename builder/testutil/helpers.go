package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"frost/builder/config"
)

// WriteFile writes content at path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// SiteConfig returns the site configuration the fixture site renders
// with: no minification, no image conversion, feeds and sitemap on,
// the heavier features off.
func SiteConfig() *config.Config {
	cfg := config.Default()
	cfg.Compress = false
	cfg.CompressImages = false
	cfg.Features = config.Features{
		Generators: config.Generators{RSS: true, Sitemap: true},
	}
	return cfg
}

// FreezeConfig returns freeze options writing to dest under an
// example.com base URL.
func FreezeConfig(dest string) config.FreezeConfig {
	fcfg := config.DefaultFreezeConfig()
	fcfg.BaseURL = "https://example.com/"
	fcfg.Destination = dest
	return fcfg
}
