package cache

import (
	bolt "go.etcd.io/bbolt"

	"frost/builder/utils"
)

// getCachedItem retrieves and decodes one item from a bucket. A nil
// result with nil error means a cache miss.
func getCachedItem[T any](db *bolt.DB, bucketName string, key []byte) (*T, error) {
	var result *T
	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		data := bucket.Get(key)
		if data == nil {
			return nil
		}

		var item T
		if err := Decode(data, &item); err != nil {
			return err
		}
		result = &item
		return nil
	})
	return result, err
}

// GetPageByPath looks up a cached page by its source path in a single
// transaction.
func (m *Manager) GetPageByPath(path string) (*PageMeta, error) {
	normalizedPath := utils.NormalizePath(path)

	var result *PageMeta
	err := m.db.View(func(tx *bolt.Tx) error {
		paths := tx.Bucket([]byte(BucketPaths))
		if paths == nil {
			return nil
		}
		pageID := paths.Get([]byte(normalizedPath))
		if pageID == nil {
			return nil
		}

		pages := tx.Bucket([]byte(BucketPages))
		if pages == nil {
			return nil
		}
		data := pages.Get(pageID)
		if data == nil {
			return nil
		}

		var meta PageMeta
		if err := Decode(data, &meta); err != nil {
			return err
		}
		result = &meta
		return nil
	})

	return result, err
}

// GetPageByID retrieves a cached page by its PageID.
func (m *Manager) GetPageByID(pageID string) (*PageMeta, error) {
	return getCachedItem[PageMeta](m.db, BucketPages, []byte(pageID))
}

// GetHTMLContent retrieves the converted HTML for a cached page.
func (m *Manager) GetHTMLContent(page *PageMeta) ([]byte, error) {
	if len(page.InlineHTML) > 0 {
		return page.InlineHTML, nil
	}
	if page.HTMLHash == "" {
		return nil, nil
	}
	return m.store.Get("pages", page.HTMLHash, true)
}

// GetCardHash returns the frontmatter hash recorded for a social card
// route, or "" when the card has never been drawn.
func (m *Manager) GetCardHash(route string) (string, error) {
	var hash string
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketCards))
		if bucket == nil {
			return nil
		}
		if data := bucket.Get([]byte(route)); data != nil {
			hash = string(data)
		}
		return nil
	})
	return hash, err
}
