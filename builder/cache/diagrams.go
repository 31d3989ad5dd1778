package cache

import (
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// LoadDiagrams fills the map with every cached diagram SVG, keyed the
// way the markdown pipeline looks them up ({hash}_{theme}). Returns
// the number of diagrams loaded.
func (m *Manager) LoadDiagrams(into *sync.Map) (int, error) {
	type entry struct {
		key      string
		artifact DiagramArtifact
	}

	var entries []entry
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketDiagrams))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var artifact DiagramArtifact
			if err := Decode(v, &artifact); err != nil {
				return nil
			}
			entries = append(entries, entry{key: string(k), artifact: artifact})
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, e := range entries {
		content, err := m.store.Get("diagrams", e.artifact.OutputHash, e.artifact.Compressed)
		if err != nil {
			continue
		}
		into.Store(e.key, string(content))
		loaded++
	}
	return loaded, nil
}

// SaveDiagrams persists every diagram in the map that the cache has
// not seen yet. Returns the number of new diagrams written.
func (m *Manager) SaveDiagrams(from *sync.Map) (int, error) {
	type pending struct {
		key string
		svg string
	}

	var toWrite []pending
	existing := make(map[string]bool)

	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketDiagrams))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			existing[string(k)] = true
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	from.Range(func(k, v interface{}) bool {
		key, _ := k.(string)
		svg, _ := v.(string)
		if key == "" || svg == "" || existing[key] {
			return true
		}
		toWrite = append(toWrite, pending{key: key, svg: svg})
		return true
	})

	if len(toWrite) == 0 {
		return 0, nil
	}

	type encoded struct {
		key  []byte
		data []byte
	}
	encodedEntries := make([]encoded, 0, len(toWrite))

	for _, p := range toWrite {
		outputHash, ct, err := m.store.Put("diagrams", []byte(p.svg))
		if err != nil {
			return 0, err
		}
		artifact := DiagramArtifact{
			OutputHash: outputHash,
			Size:       int64(len(p.svg)),
			CreatedAt:  time.Now().Unix(),
			Compressed: ct != CompressionNone,
		}
		data, err := Encode(&artifact)
		if err != nil {
			return 0, err
		}
		encodedEntries = append(encodedEntries, encoded{key: []byte(p.key), data: data})
	}

	err = m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketDiagrams))
		for _, e := range encodedEntries {
			if err := bucket.Put(e.key, e.data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(encodedEntries), nil
}
