// Package watch observes the site sources and reports settled
// changes, debounced so one editor save fires a single rebuild.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one settled filesystem change.
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Watcher watches directory trees recursively and single files.
// Dot-directories are skipped; directories created while watching are
// picked up.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onEvent  func(Event)
	files    map[string]bool
}

// New builds a watcher over paths, each a directory tree or a single
// file. Missing paths are skipped, so a site without a fonts directory
// watches the rest.
func New(paths []string, debounce time.Duration, onEvent func(Event)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{watcher: fw, debounce: debounce, onEvent: onEvent, files: make(map[string]bool)}

	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err == nil && !info.IsDir() {
			w.files[p] = true
			if err := fw.Add(p); err != nil {
				log.Printf("Error watching %s: %v", p, err)
			}
			continue
		}
		if err := w.addTree(p); err != nil {
			log.Printf("Error walking %s: %v", p, err)
		}
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if base := filepath.Base(path); strings.HasPrefix(base, ".") && path != dir {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// rearm re-attaches a directly watched file. Editors that save by
// writing a temp file and renaming it over the original leave the
// watch on the old inode, so the path has to be added again.
func (w *Watcher) rearm(name string) {
	if !w.files[name] {
		return
	}
	if _, err := os.Stat(name); err == nil {
		_ = w.watcher.Add(name)
	}
}

// Start blocks, forwarding debounced events until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	log.Println("👀 Watch mode active. Waiting for changes...")

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addTree(event.Name)
				}
			}

			// Each event replaces the pending one, so the callback
			// sees the last change of a burst.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				w.rearm(event.Name)
				w.onEvent(Event{Name: event.Name, Op: event.Op})
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("error:", err)
		}
	}
}
