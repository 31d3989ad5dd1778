package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dirs []string, debounce time.Duration) chan Event {
	t.Helper()
	events := make(chan Event, 16)
	w, err := New(dirs, debounce, func(ev Event) { events <- ev })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx)
	return events
}

func TestWatcherFiresOnChange(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, []string{dir}, 50*time.Millisecond)

	path := filepath.Join(dir, "post.md")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if filepath.Base(ev.Name) != "post.md" {
			t.Errorf("event for %q, want post.md", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, []string{dir}, 150*time.Millisecond)

	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, "file"+string(rune('a'+i))+".md")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}

	// The burst settles into one callback.
	select {
	case ev := <-events:
		t.Errorf("unexpected second event: %v", ev)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherSkipsDotDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	events := startWatcher(t, []string{dir}, 50*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		t.Errorf("event from dot-directory: %v", ev)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherPicksUpNewDirs(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, []string{dir}, 50*time.Millisecond)

	sub := filepath.Join(dir, "drafts")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	// The mkdir itself fires; drain it.
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no event for new directory")
	}

	if err := os.WriteFile(filepath.Join(sub, "wip.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if filepath.Base(ev.Name) != "wip.md" {
			t.Errorf("event for %q, want wip.md", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event from new subdirectory")
	}
}

func TestWatcherSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.yaml")
	if err := os.WriteFile(path, []byte("title: A"), 0644); err != nil {
		t.Fatal(err)
	}
	events := startWatcher(t, []string{path}, 50*time.Millisecond)

	if err := os.WriteFile(path, []byte("title: B"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if filepath.Base(ev.Name) != "blog.yaml" {
			t.Errorf("event for %q, want blog.yaml", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}
}

func TestWatcherSingleFileSurvivesReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.yaml")
	if err := os.WriteFile(path, []byte("title: A"), 0644); err != nil {
		t.Fatal(err)
	}
	events := startWatcher(t, []string{path}, 50*time.Millisecond)

	// Save the way editors do: a temp file renamed over the original.
	tmp := filepath.Join(dir, "blog.yaml.tmp")
	if err := os.WriteFile(tmp, []byte("title: B"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no event for the replace")
	}

	// The watch follows the path, not the replaced inode.
	if err := os.WriteFile(path, []byte("title: C"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no event after the replace")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	if _, err := New([]string{"does-not-exist"}, 50*time.Millisecond, func(Event) {}); err != nil {
		t.Errorf("New with missing dir: %v", err)
	}
}
