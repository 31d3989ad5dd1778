package diagram

import (
	"strings"
	"testing"
)

func TestRenderD2(t *testing.T) {
	r := New()

	svg, err := r.RenderD2("a -> b", ThemeLight)
	if err != nil {
		t.Fatalf("RenderD2: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Errorf("output does not look like SVG: %.80s", svg)
	}
}

func TestRenderD2_InvalidSource(t *testing.T) {
	r := New()

	if _, err := r.RenderD2("a -> ", ThemeLight); err == nil {
		t.Error("invalid d2 source should fail to compile")
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent("d2", "a -> b")
	b := HashContent("d2", "a -> b")
	c := HashContent("d2", "a -> c")

	if a != b {
		t.Error("hash should be deterministic")
	}
	if a == c {
		t.Error("different content should hash differently")
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}

	// The kind namespaces the key.
	if HashContent("d2", "x") == HashContent("card", "x") {
		t.Error("kind should namespace the hash")
	}
}
