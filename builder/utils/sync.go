package utils

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/afero"
)

// SyncVFS mirrors targetDir from the VFS to disk using parallel
// workers. Files whose on-disk content already matches are left
// untouched, which keeps mtimes stable for unchanged output.
func SyncVFS(srcFs afero.Fs, targetDir string) error {
	targetDirClean := filepath.Clean(targetDir)

	var filesToSync []string
	err := afero.Walk(srcFs, targetDirClean, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return os.MkdirAll(path, 0755)
		}
		filesToSync = append(filesToSync, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan VFS: %w", err)
	}

	numWorkers := runtime.NumCPU() * 2
	if numWorkers > 64 {
		numWorkers = 64
	}

	// Directories created during this sync, shared across workers.
	created := struct {
		sync.RWMutex
		dirs map[string]bool
	}{dirs: make(map[string]bool)}

	var wg sync.WaitGroup
	fileChan := make(chan string, len(filesToSync))
	errChan := make(chan error, len(filesToSync))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileChan {
				srcContent, err := afero.ReadFile(srcFs, path)
				if err != nil {
					errChan <- err
					continue
				}

				destContent, err := os.ReadFile(path)
				if err == nil && bytes.Equal(srcContent, destContent) {
					continue
				}

				dir := filepath.Dir(path)
				created.RLock()
				exists := created.dirs[dir]
				created.RUnlock()
				if !exists {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errChan <- err
						continue
					}
					created.Lock()
					created.dirs[dir] = true
					created.Unlock()
				}

				if err := os.WriteFile(path, srcContent, 0644); err != nil {
					errChan <- err
				}
			}
		}()
	}

	for _, f := range filesToSync {
		fileChan <- f
	}
	close(fileChan)
	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return <-errChan
	}
	return nil
}
