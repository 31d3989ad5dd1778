package utils

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normal", "post/hello.markdown", "post/hello.markdown"},
		{"uppercase", "post/Hello-World.markdown", "post/hello-world.markdown"},
		{"backslashes", `post\notes\setup.md`, "post/notes/setup.md"},
		{"mixed", `Post\Notes.MD`, "post/notes.md"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeRel(t *testing.T) {
	rel, err := SafeRel("post", "post/notes/setup.md")
	if err != nil {
		t.Fatalf("SafeRel: %v", err)
	}
	if rel != "notes/setup.md" {
		t.Errorf("SafeRel = %q, want %q", rel, "notes/setup.md")
	}
}

func TestWriteFileVFS(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteFileVFS(fs, "build/post/hello/index.html", []byte("<html>")); err != nil {
		t.Fatalf("WriteFileVFS: %v", err)
	}

	data, err := afero.ReadFile(fs, "build/post/hello/index.html")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "<html>" {
		t.Errorf("content = %q, want %q", data, "<html>")
	}
}

func TestCopyDirVFS(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()

	files := map[string]string{
		"static/css/site.css":  "body{}",
		"static/js/main.js":    "void 0;",
		"static/notes.txt":     "plain",
		"static/ignore.tmp":    "scratch",
		"static/sub/deep.text": "nested",
	}
	for path, content := range files {
		if err := WriteFileVFS(srcFs, path, []byte(content)); err != nil {
			t.Fatalf("fixture %s: %v", path, err)
		}
	}

	var (
		mu      sync.Mutex
		written []string
	)
	onWrite := func(path string) {
		mu.Lock()
		written = append(written, filepath.ToSlash(path))
		mu.Unlock()
	}

	err := CopyDirVFS(context.Background(), srcFs, destFs, "static", "build/static", false, []string{".tmp"}, onWrite, "", 2)
	if err != nil {
		t.Fatalf("CopyDirVFS: %v", err)
	}

	data, err := afero.ReadFile(destFs, "build/static/css/site.css")
	if err != nil {
		t.Fatalf("copied css missing: %v", err)
	}
	if string(data) != "body{}" {
		t.Errorf("css content = %q, want %q", data, "body{}")
	}

	if _, err := afero.ReadFile(destFs, "build/static/sub/deep.text"); err != nil {
		t.Errorf("nested file missing: %v", err)
	}

	if exists, _ := afero.Exists(destFs, "build/static/ignore.tmp"); exists {
		t.Error("excluded extension should not be copied")
	}

	sort.Strings(written)
	wantWritten := []string{
		"build/static/css/site.css",
		"build/static/js/main.js",
		"build/static/notes.txt",
		"build/static/sub/deep.text",
	}
	if len(written) != len(wantWritten) {
		t.Fatalf("onWrite paths = %v, want %v", written, wantWritten)
	}
	for i := range written {
		if written[i] != wantWritten[i] {
			t.Errorf("onWrite[%d] = %q, want %q", i, written[i], wantWritten[i])
		}
	}
}

func TestCopyDirVFS_MissingSource(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()

	err := CopyDirVFS(context.Background(), srcFs, destFs, "static", "build/static", false, nil, nil, "", 1)
	if err != nil {
		t.Errorf("CopyDirVFS with missing source = %v, want nil", err)
	}
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "blog.yaml")
	fileB := filepath.Join(dir, "freezing.yaml")

	if err := os.WriteFile(fileA, []byte("title: A"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fileB, []byte("destination: out"), 0644); err != nil {
		t.Fatal(err)
	}

	first, err := HashFiles([]string{fileA, fileB})
	if err != nil {
		t.Fatalf("HashFiles: %v", err)
	}

	// Same inputs, same hash, regardless of argument order
	swapped, err := HashFiles([]string{fileB, fileA})
	if err != nil {
		t.Fatalf("HashFiles: %v", err)
	}
	if first != swapped {
		t.Error("hash should not depend on argument order")
	}

	if err := os.WriteFile(fileB, []byte("destination: build"), 0644); err != nil {
		t.Fatal(err)
	}
	changed, err := HashFiles([]string{fileA, fileB})
	if err != nil {
		t.Fatalf("HashFiles: %v", err)
	}
	if changed == first {
		t.Error("content change should change the hash")
	}

	// Missing files are skipped, not fatal
	if _, err := HashFiles([]string{fileA, filepath.Join(dir, "absent.yaml")}); err != nil {
		t.Errorf("HashFiles with missing file = %v, want nil", err)
	}
}
