package utils

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// NormalizePath normalizes a source file path for consistent cache
// keys and cross-platform compatibility: forward slashes, lowercase,
// Windows drive letters uppercased.
func NormalizePath(path string) string {
	// Fast path: no backslashes and already lowercase
	needsWork := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '\\' || (c >= 'A' && c <= 'Z') {
			needsWork = true
			break
		}
	}
	if !needsWork {
		return path
	}

	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '\\':
			b.WriteByte('/')
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 32)
		default:
			b.WriteByte(c)
		}
	}
	result := b.String()

	if runtime.GOOS == "windows" && len(result) >= 2 && result[1] == ':' {
		return strings.ToUpper(result[:1]) + result[1:]
	}
	return result
}

// SafeRel is a wrapper around filepath.Rel that normalizes paths first.
func SafeRel(base, target string) (string, error) {
	base = filepath.FromSlash(NormalizePath(base))
	target = filepath.FromSlash(NormalizePath(target))
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// WriteFileVFS writes data to path, creating parent directories.
func WriteFileVFS(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}

type copyTask struct {
	srcPath string
	dstPath string
}

// CopyDirVFS copies srcDir from srcFs into dstDir on destFs. With
// compress, raster images are converted to WebP on a worker pool and
// their destination names swap extension accordingly. onWrite observes
// every destination path written.
func CopyDirVFS(ctx context.Context, srcFs, destFs afero.Fs, srcDir, dstDir string, compress bool, excludeExts []string, onWrite func(string), cacheDir string, imageWorkers int) error {
	if err := destFs.MkdirAll(dstDir, 0755); err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		taskErrs []error
	)

	pool := NewWorkerPool(ctx, imageWorkers, func(t copyTask) {
		if err := processImageVFS(srcFs, destFs, t.srcPath, t.dstPath, cacheDir); err != nil {
			mu.Lock()
			taskErrs = append(taskErrs, fmt.Errorf("image %s: %w", t.srcPath, err))
			mu.Unlock()
			return
		}
		if onWrite != nil {
			onWrite(t.dstPath)
		}
	})
	pool.Start()

	walkErr := afero.Walk(srcFs, srcDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		ext := strings.ToLower(filepath.Ext(path))

		for _, exclude := range excludeExts {
			if ext == exclude {
				return nil
			}
		}

		isImage := ext == ".jpg" || ext == ".jpeg" || ext == ".png"
		if compress && isImage {
			webpRel := rel[:len(rel)-len(ext)] + ".webp"
			pool.Submit(copyTask{srcPath: path, dstPath: filepath.Join(dstDir, webpRel)})
			return nil
		}

		destPath := filepath.Join(dstDir, rel)
		data, err := afero.ReadFile(srcFs, path)
		if err != nil {
			return err
		}
		if err := WriteFileVFS(destFs, destPath, data); err != nil {
			return err
		}
		if onWrite != nil {
			onWrite(destPath)
		}
		return nil
	})

	pool.Stop()

	if walkErr != nil {
		return walkErr
	}
	if len(taskErrs) > 0 {
		return taskErrs[0]
	}
	return nil
}

func processImageVFS(srcFs afero.Fs, destFs afero.Fs, srcPath, dstPath string, cacheDir string) error {
	// Skip if the destination on disk is newer than the source
	srcInfo, err := srcFs.Stat(srcPath)
	if err == nil {
		if dstInfo, err := os.Stat(dstPath); err == nil {
			if !srcInfo.ModTime().After(dstInfo.ModTime()) {
				data, err := os.ReadFile(dstPath)
				if err == nil {
					return WriteFileVFS(destFs, dstPath, data)
				}
			}
		}
	}

	// Persistent conversion cache keyed by path, size and mtime
	var cacheFile string
	if cacheDir != "" && err == nil {
		key := fmt.Sprintf("%s-%d-%d", srcPath, srcInfo.Size(), srcInfo.ModTime().UnixNano())
		hash := blake3.Sum256([]byte(key))
		cacheFile = filepath.Join(cacheDir, hex.EncodeToString(hash[:])+".webp")

		if data, err := os.ReadFile(cacheFile); err == nil {
			return WriteFileVFS(destFs, dstPath, data)
		}
	}

	file, err := srcFs.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	img, err := imaging.Decode(file)
	if err != nil {
		return err
	}

	if img.Bounds().Dx() > MaxImageWidth {
		img = imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	}

	if cacheFile != "" {
		if err := os.MkdirAll(filepath.Dir(cacheFile), 0755); err == nil {
			fCache, err := os.Create(cacheFile)
			if err == nil {
				err = webp.Encode(fCache, img, &webp.Options{Lossless: false, Quality: 80})
				_ = fCache.Close()
				if err == nil {
					if data, err := os.ReadFile(cacheFile); err == nil {
						return WriteFileVFS(destFs, dstPath, data)
					}
				}
			}
		}
		// Fall through when the cache write fails
	}

	if err := destFs.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	out, err := destFs.Create(dstPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	return webp.Encode(out, img, &webp.Options{Lossless: false, Quality: 80})
}

// HashFiles generates a deterministic BLAKE3 hash of multiple files.
// Missing files are skipped so the hash stays stable across optional
// config files.
func HashFiles(files []string) (string, error) {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	h := blake3.New()
	for _, path := range sorted {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		_, _ = io.WriteString(h, path)
		h.Write([]byte{0})
		if _, err := io.Copy(h, f); err != nil {
			_ = f.Close()
			return "", err
		}
		_ = f.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
