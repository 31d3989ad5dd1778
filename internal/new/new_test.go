package new

import (
	"os"
	"strings"
	"testing"

	"frost/builder/config"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"What's New in Go 1.25?", "what's-new-in-go-1.25"},
		{"a/b\\c:d", "abcd"},
		{"--trimmed--", "trimmed"},
		{"Spaced   Out", "spaced-out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeSlug(tt.in); got != tt.want {
			t.Errorf("sanitizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSlugLength(t *testing.T) {
	long := strings.Repeat("a", 150)
	if got := sanitizeSlug(long); len(got) != 100 {
		t.Errorf("len = %d, want 100", len(got))
	}
}

func TestRunCreatesPost(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()

	if err := Run(cfg, []string{"My First Post"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile("post/my-first-post.md")
	if err != nil {
		t.Fatalf("post file missing: %v", err)
	}
	if !strings.Contains(string(data), `title: "My First Post"`) {
		t.Error("frontmatter title missing")
	}
	if !strings.Contains(string(data), "date: ") {
		t.Error("frontmatter date missing")
	}
}

func TestRunCreatesPage(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()

	if err := Run(cfg, []string{"page", "About"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile("page/about.html")
	if err != nil {
		t.Fatalf("page file missing: %v", err)
	}
	if !strings.Contains(string(data), `title: "About"`) {
		t.Error("frontmatter title missing")
	}
}

func TestRunRefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()

	if err := Run(cfg, []string{"Twice"}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := Run(cfg, []string{"Twice"}); err == nil {
		t.Fatal("second Run overwrote an existing post")
	}
}

func TestRunRejectsEmptySlug(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()

	if err := Run(cfg, []string{"???"}); err == nil {
		t.Fatal("expected an error for a slug-less title")
	}
}

func TestRunWithoutTitle(t *testing.T) {
	cfg := config.Default()
	if err := Run(cfg, nil); err == nil {
		t.Fatal("expected a usage error")
	}
	if err := Run(cfg, []string{"page"}); err == nil {
		t.Fatal("expected a usage error for a kind without a title")
	}
}
