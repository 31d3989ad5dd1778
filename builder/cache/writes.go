package cache

import (
	bolt "go.etcd.io/bbolt"

	"frost/builder/utils"
)

// PutPage commits a page and its path index entry in one transaction.
// Call StoreHTMLForPage first so the HTML fields are settled.
func (m *Manager) PutPage(page *PageMeta) error {
	data, err := Encode(page)
	if err != nil {
		return err
	}

	pageID := []byte(page.PageID)
	pathKey := []byte(utils.NormalizePath(page.Path))

	return m.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(BucketPages)).Put(pageID, data); err != nil {
			return err
		}
		return tx.Bucket([]byte(BucketPaths)).Put(pathKey, pageID)
	})
}

// StoreHTMLForPage attaches converted HTML to a page, inlining small
// documents and content-addressing the rest.
func (m *Manager) StoreHTMLForPage(page *PageMeta, content []byte) error {
	if len(content) < InlineHTMLThreshold {
		page.InlineHTML = content
		page.HTMLHash = ""
		return nil
	}
	hash, _, err := m.store.Put("pages", content)
	if err != nil {
		return err
	}
	page.HTMLHash = hash
	page.InlineHTML = nil
	return nil
}

// SetCardHash records the frontmatter hash a social card was drawn
// from, so unchanged cards are skipped next freeze.
func (m *Manager) SetCardHash(route, hash string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketCards)).Put([]byte(route), []byte(hash))
	})
}

// DeletePage removes a page and its path index entry.
func (m *Manager) DeletePage(pageID string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		pages := tx.Bucket([]byte(BucketPages))
		paths := tx.Bucket([]byte(BucketPaths))

		key := []byte(pageID)
		if data := pages.Get(key); data != nil {
			var page PageMeta
			if err := Decode(data, &page); err == nil {
				_ = paths.Delete([]byte(utils.NormalizePath(page.Path)))
			}
		}
		return pages.Delete(key)
	})
}
