// Package cache persists converted pages and rendered diagrams
// between freezes in BoltDB plus a content-addressed store.
package cache

import (
	"encoding/hex"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"frost/builder/models"
	"frost/builder/utils"
)

// PageMeta stores everything a cache hit needs to rebuild a post page
// without re-running the markdown pipeline.
type PageMeta struct {
	PageID       string                 `msgpack:"page_id"`
	Path         string                 `msgpack:"path"`
	ModTime      int64                  `msgpack:"mod_time"`
	BodyHash     string                 `msgpack:"body_hash"`
	HTMLHash     string                 `msgpack:"html_hash,omitempty"`
	InlineHTML   []byte                 `msgpack:"inline_html,omitempty"`
	Title        string                 `msgpack:"title"`
	Date         time.Time              `msgpack:"date"`
	Tags         []string               `msgpack:"tags"`
	ReadingTime  int                    `msgpack:"reading_time"`
	Description  string                 `msgpack:"description"`
	Route        string                 `msgpack:"route"`
	Draft        bool                   `msgpack:"draft"`
	HasMath      bool                   `msgpack:"has_math"`
	Meta         map[string]interface{} `msgpack:"meta"`
	TOC          []models.TOCEntry      `msgpack:"toc"`
	LinkedRoutes []string               `msgpack:"linked_routes"`
}

// DiagramArtifact points a diagram cache key at its stored SVG.
type DiagramArtifact struct {
	OutputHash string `msgpack:"output_hash"`
	Size       int64  `msgpack:"size"`
	CreatedAt  int64  `msgpack:"created_at"`
	Compressed bool   `msgpack:"compressed"`
}

// CacheStats holds the numbers behind the cache stats command.
type CacheStats struct {
	TotalPages    int   `msgpack:"total_pages"`
	TotalDiagrams int   `msgpack:"total_diagrams"`
	TotalCards    int   `msgpack:"total_cards"`
	StoreBytes    int64 `msgpack:"store_bytes"`
	FreezeCount   int   `msgpack:"freeze_count"`
	LastFreeze    int64 `msgpack:"last_freeze"`
	SchemaVersion int   `msgpack:"schema_version"`
}

// CompressionType indicates how an artifact is stored.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionZstdFast
	CompressionZstdLevel3
)

const (
	// Pages smaller than this keep their HTML inline in BoltDB.
	InlineHTMLThreshold = 32 * 1024

	// Store compression tiers by content size.
	RawThreshold = 8 * 1024
	FastZstdMax  = 128 * 1024

	SchemaVersion = 1
)

// HashContent computes a BLAKE3 hash of content as a hex string.
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString computes a BLAKE3 hash of a string.
func HashString(s string) string {
	return HashContent([]byte(s))
}

// GeneratePageID derives a stable ID from a source path.
func GeneratePageID(path string) string {
	return HashString(utils.NormalizePath(path))
}

// Encode serializes a value to msgpack bytes.
func Encode(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes into a value.
func Decode(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
