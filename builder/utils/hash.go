package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"sort"
)

// GetFrontmatterHash hashes the frontmatter fields that appear on a
// social card, so cards regenerate only when their content changes.
func GetFrontmatterHash(metaData map[string]interface{}) (string, error) {
	h := sha256.New()

	writeString(h, GetString(metaData, "title"))
	h.Write([]byte{0})
	writeString(h, GetString(metaData, "description"))
	h.Write([]byte{0})
	writeString(h, GetString(metaData, "date"))
	h.Write([]byte{0})

	// Tags (sorted for determinism)
	tags := GetSlice(metaData, "tags")
	if len(tags) > 0 {
		tagsCopy := make([]string, len(tags))
		copy(tagsCopy, tags)
		sort.Strings(tagsCopy)
		for _, tag := range tagsCopy {
			writeString(h, tag)
			h.Write([]byte{0})
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeString(h hash.Hash, s string) {
	_, _ = io.WriteString(h, s)
}
