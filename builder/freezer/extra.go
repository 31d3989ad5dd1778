package freezer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// lockFileName is never removed even when the ignore patterns are
// overridden, since the running freeze holds it.
const lockFileName = ".frost-freeze.lock"

// removeExtra deletes files under destRoot that this freeze did not
// produce. frozen holds destination-relative slash paths; ignores
// protect matching paths from removal. Directories left empty are
// pruned afterwards.
func removeExtra(destRoot string, frozen map[string]bool, ignores []glob.Glob) ([]string, error) {
	var removed []string

	err := filepath.WalkDir(destRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(destRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == lockFileName || frozen[rel] || matchAny(ignores, rel) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			return err
		}
		removed = append(removed, rel)
		return nil
	})
	if err != nil {
		return removed, err
	}

	return removed, pruneEmptyDirs(destRoot)
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// pruneEmptyDirs removes directories emptied by removeExtra, deepest
// first. Directories still holding ignored files survive the Remove.
func pruneEmptyDirs(destRoot string) error {
	var dirs []string
	err := filepath.WalkDir(destRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != destRoot {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})
	for _, dir := range dirs {
		// Fails on non-empty directories, which is the point.
		_ = os.Remove(dir)
	}
	return nil
}
