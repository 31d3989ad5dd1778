package server

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validatePath resolves a request path inside baseDir and rejects
// anything that escapes it.
func validatePath(baseDir, userPath string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	abs, err := filepath.Abs(filepath.Join(baseDir, filepath.Clean(userPath)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	rel, err := filepath.Rel(absBase, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return abs, nil
}

// normalizeRequestPath cleans the request path for lookups against
// the frozen tree.
func normalizeRequestPath(rawPath string) string {
	return filepath.ToSlash(filepath.Clean(rawPath))
}

// isHashedAsset reports whether filename carries an esbuild content
// hash ("site.A1B2C3D4.css"), which makes it safe to cache forever.
func isHashedAsset(filename string) bool {
	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) != 8 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
