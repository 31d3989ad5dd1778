package freezer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gobwas/glob"
)

func writeDestFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

func compileGlobs(t *testing.T, patterns ...string) []glob.Glob {
	t.Helper()
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			t.Fatalf("compile %q: %v", p, err)
		}
		globs = append(globs, g)
	}
	return globs
}

func TestRemoveExtraDeletesStale(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, "index.html")
	writeDestFile(t, root, "stale.html")

	frozen := map[string]bool{"index.html": true}
	removed, err := removeExtra(root, frozen, compileGlobs(t, ".*"))
	if err != nil {
		t.Fatalf("removeExtra: %v", err)
	}

	if len(removed) != 1 || removed[0] != "stale.html" {
		t.Errorf("removed = %v, want [stale.html]", removed)
	}
	if exists(root, "stale.html") {
		t.Error("stale.html still on disk")
	}
	if !exists(root, "index.html") {
		t.Error("frozen index.html was removed")
	}
}

func TestRemoveExtraSparesDotfiles(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, ".nojekyll")
	writeDestFile(t, root, ".git/config")
	writeDestFile(t, root, "stale.html")

	removed, err := removeExtra(root, map[string]bool{}, compileGlobs(t, ".*"))
	if err != nil {
		t.Fatalf("removeExtra: %v", err)
	}

	if len(removed) != 1 || removed[0] != "stale.html" {
		t.Errorf("removed = %v, want [stale.html]", removed)
	}
	if !exists(root, ".nojekyll") {
		t.Error(".nojekyll was removed")
	}
	// "*" crosses separators, so ".*" also covers files under
	// dot-directories.
	if !exists(root, ".git/config") {
		t.Error(".git/config was removed")
	}
}

func TestRemoveExtraCustomPattern(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, "notes.txt")
	writeDestFile(t, root, "stale.html")

	removed, err := removeExtra(root, map[string]bool{}, compileGlobs(t, "*.txt"))
	if err != nil {
		t.Fatalf("removeExtra: %v", err)
	}

	if len(removed) != 1 || removed[0] != "stale.html" {
		t.Errorf("removed = %v, want [stale.html]", removed)
	}
	if !exists(root, "notes.txt") {
		t.Error("ignored notes.txt was removed")
	}
}

func TestRemoveExtraKeepsLockFile(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, lockFileName)

	// No ignore patterns at all: the lock still survives.
	removed, err := removeExtra(root, map[string]bool{}, nil)
	if err != nil {
		t.Fatalf("removeExtra: %v", err)
	}

	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
	if !exists(root, lockFileName) {
		t.Error("lock file was removed")
	}
}

func TestRemoveExtraPrunesEmptyDirs(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, "old/deep/page.html")
	writeDestFile(t, root, "post/hello/index.html")
	writeDestFile(t, root, "post/gone/index.html")

	frozen := map[string]bool{"post/hello/index.html": true}
	if _, err := removeExtra(root, frozen, nil); err != nil {
		t.Fatalf("removeExtra: %v", err)
	}

	if exists(root, "old") {
		t.Error("emptied directory old/ survived")
	}
	if exists(root, "post/gone") {
		t.Error("emptied directory post/gone/ survived")
	}
	if !exists(root, "post/hello/index.html") {
		t.Error("frozen file lost its directory")
	}
}

func TestRemoveExtraKeepsDirsWithIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, ".git/HEAD")
	writeDestFile(t, root, "gone.html")

	if _, err := removeExtra(root, map[string]bool{}, compileGlobs(t, ".*")); err != nil {
		t.Fatalf("removeExtra: %v", err)
	}

	if !exists(root, ".git/HEAD") {
		t.Error(".git/HEAD was removed")
	}
	if !exists(root, ".git") {
		t.Error(".git directory was pruned")
	}
}
