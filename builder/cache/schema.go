package cache

// BoltDB bucket names.
const (
	BucketPages    = "pages"    // {PageID} -> PageMeta
	BucketPaths    = "paths"    // {normalized path} -> PageID
	BucketDiagrams = "diagrams" // {hash_theme} -> DiagramArtifact
	BucketCards    = "cards"    // {route} -> frontmatter hash

	BucketMeta  = "meta"  // schema_version, cache_id
	BucketStats = "stats" // freeze_count, last_freeze

	KeySchemaVersion = "schema_version"
	KeyCacheID       = "cache_id"
	KeyFreezeCount   = "freeze_count"
	KeyLastFreeze    = "last_freeze"
)

// AllBuckets returns all bucket names for initialization.
func AllBuckets() []string {
	return []string{
		BucketPages,
		BucketPaths,
		BucketDiagrams,
		BucketCards,
		BucketMeta,
		BucketStats,
	}
}
