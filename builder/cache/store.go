package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Store provides content-addressed file storage with two-tier
// sharding: {category}/{hash[0:2]}/{hash[2:4]}/{hash}.
type Store struct {
	basePath string
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewStore creates a content-addressed store rooted at basePath.
func NewStore(basePath string) (*Store, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{
		basePath: basePath,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close releases compressor resources.
func (s *Store) Close() error {
	_ = s.encoder.Close()
	s.decoder.Close()
	return nil
}

func (s *Store) shardPath(category string, hash string) string {
	if len(hash) < 4 {
		return filepath.Join(s.basePath, category, hash)
	}
	return filepath.Join(s.basePath, category, hash[0:2], hash[2:4], hash)
}

func extension(ct CompressionType) string {
	if ct == CompressionNone {
		return ".raw"
	}
	return ".zst"
}

func determineCompression(size int) CompressionType {
	if size < RawThreshold {
		return CompressionNone
	}
	if size < FastZstdMax {
		return CompressionZstdFast
	}
	return CompressionZstdLevel3
}

// Put stores content and returns its hash and compression type.
// Identical content is written once.
func (s *Store) Put(category string, content []byte) (hash string, ct CompressionType, err error) {
	hash = HashContent(content)
	ct = determineCompression(len(content))

	path := s.shardPath(category, hash) + extension(ct)

	if _, err := os.Stat(path); err == nil {
		return hash, ct, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	var data []byte
	switch ct {
	case CompressionNone:
		data = content
	case CompressionZstdLevel3:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return "", 0, err
		}
		data = enc.EncodeAll(content, nil)
		_ = enc.Close()
	default:
		data = s.encoder.EncodeAll(content, nil)
	}

	// Atomic write: .tmp -> fsync -> rename.
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to write content: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to rename file: %w", err)
	}

	return hash, ct, nil
}

// Get retrieves content by hash, probing the other compression
// extension when the expected one is missing.
func (s *Store) Get(category string, hash string, compressed bool) ([]byte, error) {
	path := s.shardPath(category, hash) + extensionFor(compressed)

	data, err := os.ReadFile(path)
	if err != nil {
		compressed = !compressed
		path = s.shardPath(category, hash) + extensionFor(compressed)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("artifact not found: %s", hash)
		}
	}

	if compressed {
		return s.decoder.DecodeAll(data, nil)
	}
	return data, nil
}

func extensionFor(compressed bool) string {
	if compressed {
		return ".zst"
	}
	return ".raw"
}

// Exists checks if a hash exists in the store.
func (s *Store) Exists(category string, hash string) bool {
	if _, err := os.Stat(s.shardPath(category, hash) + ".raw"); err == nil {
		return true
	}
	if _, err := os.Stat(s.shardPath(category, hash) + ".zst"); err == nil {
		return true
	}
	return false
}

// Delete removes a hash from the store.
func (s *Store) Delete(category string, hash string) error {
	_ = os.Remove(s.shardPath(category, hash) + ".raw")
	_ = os.Remove(s.shardPath(category, hash) + ".zst")
	return nil
}

// Size returns total bytes used by a category.
func (s *Store) Size(category string) (int64, error) {
	categoryPath := filepath.Join(s.basePath, category)
	if _, err := os.Stat(categoryPath); os.IsNotExist(err) {
		return 0, nil
	}

	var total int64
	err := filepath.Walk(categoryPath, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
