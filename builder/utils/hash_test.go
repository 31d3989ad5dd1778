package utils

import "testing"

func TestGetFrontmatterHash(t *testing.T) {
	meta := map[string]interface{}{
		"title":       "Hello World",
		"description": "First post",
		"date":        "2026-01-15",
		"tags":        []interface{}{"go", "blog"},
	}

	first, err := GetFrontmatterHash(meta)
	if err != nil {
		t.Fatalf("GetFrontmatterHash: %v", err)
	}
	second, err := GetFrontmatterHash(meta)
	if err != nil {
		t.Fatalf("GetFrontmatterHash: %v", err)
	}

	if first != second {
		t.Errorf("hash not deterministic: %q vs %q", first, second)
	}
}

func TestGetFrontmatterHash_TagOrderIrrelevant(t *testing.T) {
	a := map[string]interface{}{
		"title": "Post",
		"tags":  []interface{}{"go", "blog"},
	}
	b := map[string]interface{}{
		"title": "Post",
		"tags":  []interface{}{"blog", "go"},
	}

	hashA, _ := GetFrontmatterHash(a)
	hashB, _ := GetFrontmatterHash(b)

	if hashA != hashB {
		t.Error("tag order should not change the hash")
	}
}

func TestGetFrontmatterHash_ContentSensitive(t *testing.T) {
	base := map[string]interface{}{
		"title": "Post",
		"date":  "2026-01-15",
	}
	changed := map[string]interface{}{
		"title": "Post (updated)",
		"date":  "2026-01-15",
	}

	hashBase, _ := GetFrontmatterHash(base)
	hashChanged, _ := GetFrontmatterHash(changed)

	if hashBase == hashChanged {
		t.Error("different titles should produce different hashes")
	}
}

func TestGetFrontmatterHash_NilMap(t *testing.T) {
	if _, err := GetFrontmatterHash(nil); err != nil {
		t.Errorf("GetFrontmatterHash(nil) = %v, want nil error", err)
	}
}
