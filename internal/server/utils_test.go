package server

import (
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	got, err := validatePath(base, "/post/hello/index.html")
	if err != nil {
		t.Fatalf("validatePath: %v", err)
	}
	want := filepath.Join(base, "post", "hello", "index.html")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestValidatePathRejectsTraversal(t *testing.T) {
	base := t.TempDir()

	for _, p := range []string{
		"..",
		"../secret",
		"../../etc/passwd",
	} {
		if _, err := validatePath(base, p); err == nil {
			t.Errorf("validatePath(%q) accepted a traversal", p)
		}
	}
}

func TestValidatePathSiblingPrefix(t *testing.T) {
	base := t.TempDir()

	// A sibling directory sharing the base name prefix must not pass.
	sibling := ".." + string(filepath.Separator) + filepath.Base(base) + "-evil"
	if _, err := validatePath(base, sibling); err == nil {
		t.Error("sibling directory with shared prefix accepted")
	}
}

func TestNormalizeRequestPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/post/hello/", "/post/hello"},
		{"//double//slash", "/double/slash"},
		{"/a/./b/../c", "/a/c"},
	}
	for _, tt := range tests {
		if got := normalizeRequestPath(tt.in); got != tt.want {
			t.Errorf("normalizeRequestPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsHashedAsset(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"site.A1B2C3D4.css", true},
		{"main.00FFAA11.js", true},
		{"site.css", false},
		{"archive.tar.gz", false},
		{"site.a1b2c3d4.css", false}, // esbuild hashes are uppercase
		{"site.TOOLONGHASH1.css", false},
		{"photo.webp", false},
	}
	for _, tt := range tests {
		if got := isHashedAsset(tt.name); got != tt.want {
			t.Errorf("isHashedAsset(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
