// Package clean removes the frozen output and optionally the freeze
// cache.
package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"frost/builder/config"
)

// Run deletes the destination tree. With cleanCache the freeze cache
// goes too, forcing a full rebuild on the next freeze.
func Run(cfg *config.Config, fcfg config.FreezeConfig, cleanCache bool) error {
	start := time.Now()

	if err := removeTree(fcfg.Destination); err != nil {
		return err
	}
	if cleanCache {
		if err := removeTree(cfg.CacheDir); err != nil {
			return err
		}
	}

	fmt.Printf("🧹 Cleaned in %v.\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// removeTree renames the directory aside first, so a half-deleted
// tree never masquerades as a valid destination.
func removeTree(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	tempPath := filepath.Join(filepath.Dir(path),
		fmt.Sprintf("%s_deleting_%d", filepath.Base(path), time.Now().UnixNano()))

	if err := os.Rename(path, tempPath); err != nil {
		// Cross-device or locked: fall back to deleting in place.
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		return nil
	}

	if err := os.RemoveAll(tempPath); err != nil {
		return fmt.Errorf("remove %s: %w", tempPath, err)
	}
	return nil
}
