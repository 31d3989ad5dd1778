package cache

import (
	"encoding/binary"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"

	"frost/builder/utils"
)

// Stats gathers the numbers for the cache stats command.
func (m *Manager) Stats() (*CacheStats, error) {
	stats := &CacheStats{SchemaVersion: SchemaVersion}

	err := m.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket([]byte(BucketPages)); bucket != nil {
			stats.TotalPages = bucket.Stats().KeyN
		}
		if bucket := tx.Bucket([]byte(BucketDiagrams)); bucket != nil {
			stats.TotalDiagrams = bucket.Stats().KeyN
		}
		if bucket := tx.Bucket([]byte(BucketCards)); bucket != nil {
			stats.TotalCards = bucket.Stats().KeyN
		}

		if bucket := tx.Bucket([]byte(BucketStats)); bucket != nil {
			if data := bucket.Get([]byte(KeyFreezeCount)); data != nil {
				stats.FreezeCount = int(binary.BigEndian.Uint32(data))
			}
			if data := bucket.Get([]byte(KeyLastFreeze)); data != nil {
				stats.LastFreeze = int64(binary.BigEndian.Uint64(data))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, category := range []string{"pages", "diagrams", "cards"} {
		size, err := m.store.Size(category)
		if err != nil {
			return nil, err
		}
		stats.StoreBytes += size
	}

	return stats, nil
}

// Clear removes all cache data and reopens an empty cache in place.
func (m *Manager) Clear() error {
	_ = m.store.Close()
	_ = m.db.Close()

	if err := os.RemoveAll(m.basePath); err != nil {
		return err
	}

	fresh, err := Open(m.basePath, false)
	if err != nil {
		return err
	}

	m.db = fresh.db
	m.store = fresh.store
	return nil
}

// Verify checks cache integrity: every page must have a path mapping
// and every content-addressed blob must exist in the store.
func (m *Manager) Verify() ([]string, error) {
	var problems []string

	err := m.db.View(func(tx *bolt.Tx) error {
		pagesBucket := tx.Bucket([]byte(BucketPages))
		pathsBucket := tx.Bucket([]byte(BucketPaths))

		return pagesBucket.ForEach(func(k, v []byte) error {
			var page PageMeta
			if err := Decode(v, &page); err != nil {
				problems = append(problems, fmt.Sprintf("corrupt page data: %s", string(k)))
				return nil
			}

			normalizedPath := utils.NormalizePath(page.Path)
			mappedID := pathsBucket.Get([]byte(normalizedPath))
			if mappedID == nil {
				problems = append(problems, fmt.Sprintf("missing path mapping: %s -> %s", normalizedPath, page.PageID))
			} else if string(mappedID) != page.PageID {
				problems = append(problems, fmt.Sprintf("path mapping mismatch: %s -> %s (expected %s)", normalizedPath, string(mappedID), page.PageID))
			}

			if page.HTMLHash != "" && !m.store.Exists("pages", page.HTMLHash) {
				problems = append(problems, fmt.Sprintf("missing HTML blob: %s for page %s", page.HTMLHash, page.PageID))
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	err = m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketDiagrams))
		return bucket.ForEach(func(k, v []byte) error {
			var artifact DiagramArtifact
			if err := Decode(v, &artifact); err != nil {
				problems = append(problems, fmt.Sprintf("corrupt diagram artifact: %s", string(k)))
				return nil
			}
			if !m.store.Exists("diagrams", artifact.OutputHash) {
				problems = append(problems, fmt.Sprintf("missing diagram blob: %s for %s", artifact.OutputHash, string(k)))
			}
			return nil
		})
	})

	return problems, err
}
