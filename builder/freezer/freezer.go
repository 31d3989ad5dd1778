// Package freezer turns the site sources into a complete static tree
// in the configured destination.
package freezer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"

	"frost/builder/cache"
	"frost/builder/config"
	"frost/builder/content"
	"frost/builder/diagram"
	"frost/builder/generators"
	"frost/builder/metrics"
	mdParser "frost/builder/parser"
	"frost/builder/renderer"
	"frost/builder/urls"
	"frost/builder/utils"
)

// Freezer renders the whole site into an in-memory filesystem and
// mirrors it to the destination. One Freezer runs one freeze at a
// time; Freeze may be called again after a source change.
type Freezer struct {
	cfg  *config.Config
	fcfg config.FreezeConfig

	res     *urls.Resolver
	md      goldmark.Markdown
	rnd     *renderer.Renderer
	cache   *cache.Manager
	d2      *diagram.Renderer
	d2Cache *sync.Map
	cards   *generators.CardRenderer

	warn *Suppressor
	met  *metrics.FreezeMetrics

	SourceFs afero.Fs
	DestFs   afero.Fs
	destRoot string

	mu     sync.Mutex
	frozen map[string]bool
	linked map[string][]string // route -> internal routes it references
}

// New wires a freezer from the site and freeze configurations. The
// freeze options are fixed for the Freezer's lifetime.
func New(cfg *config.Config, fcfg config.FreezeConfig) (*Freezer, error) {
	warn, err := NewSuppressor(fcfg.SuppressedWarnings)
	if err != nil {
		return nil, &config.ConfigError{Option: "suppressedWarnings", Reason: "invalid pattern", Err: err}
	}

	sourceFs := afero.NewOsFs()
	destFs := afero.NewMemMapFs()

	rnd, err := renderer.New(sourceFs, cfg.TemplateDir, destFs, cfg.Compress)
	if err != nil {
		return nil, err
	}

	cm, err := cache.Open(cfg.CacheDir, cfg.IsDev)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	f := &Freezer{
		cfg:      cfg,
		fcfg:     fcfg,
		res:      urls.NewResolver(fcfg.BaseURL, fcfg.RelativeURLs),
		rnd:      rnd,
		cache:    cm,
		d2Cache:  &sync.Map{},
		warn:     warn,
		SourceFs: sourceFs,
		DestFs:   destFs,
		destRoot: fcfg.Destination,
	}

	if cfg.Features.Diagrams {
		f.d2 = diagram.New()
	}
	f.md = mdParser.New(f.res, cfg.CompressImages, f.d2, f.d2Cache)

	if cfg.Features.Generators.SocialCards {
		faviconPath := filepath.Join(cfg.StaticDir, "favicon.png")
		f.cards = generators.NewCardRenderer(sourceFs, cfg.FontsDir, &cfg.SocialCards, cfg.Title, faviconPath)
	}

	return f, nil
}

// Close releases the freeze cache.
func (f *Freezer) Close() error {
	return f.cache.Close()
}

// Metrics returns the counters of the most recent freeze.
func (f *Freezer) Metrics() *metrics.FreezeMetrics { return f.met }

// Warnings returns the unsuppressed warnings of the most recent
// freeze.
func (f *Freezer) Warnings() []Warning { return f.warn.Warnings() }

// Freeze builds the site. It renders every post, page, listing and
// generated file into memory, syncs the result to the destination and
// finally removes files the freeze did not produce.
func (f *Freezer) Freeze(ctx context.Context) error {
	f.met = metrics.NewFreezeMetrics()
	f.frozen = make(map[string]bool)
	f.linked = make(map[string][]string)
	f.warn.Reset()

	if err := os.MkdirAll(f.destRoot, 0755); err != nil {
		return &config.ConfigError{Option: "destination", Reason: fmt.Sprintf("cannot create %q", f.destRoot), Err: err}
	}

	lock, err := utils.AcquireFreezeLock(f.destRoot)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	utils.InitMinifier()

	if err := f.verifyCache(); err != nil {
		return err
	}

	if f.cfg.Features.Diagrams {
		if n, err := f.cache.LoadDiagrams(f.d2Cache); err == nil && n > 0 {
			fmt.Printf("📦 Loaded %d cached diagrams\n", n)
		}
	}

	lib, err := content.Load(f.SourceFs, f.cfg.PostRoot, f.cfg.PageRoot, f.cfg.IncludeDrafts)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if len(lib.Posts) == 0 {
		f.warn.Warnf("Nothing frozen for posts: no sources under %s", f.cfg.PostRoot)
	}
	if len(lib.Pages) == 0 {
		f.warn.Warnf("Nothing frozen for pages: no sources under %s", f.cfg.PageRoot)
	}

	if err := f.copyStatic(ctx); err != nil {
		return err
	}

	if err := f.convertPosts(ctx, lib); err != nil {
		return err
	}

	f.renderPages(lib)
	f.renderIndexes(lib)
	f.renderArchives(lib)
	f.render404()

	if err := f.generate(lib); err != nil {
		return err
	}

	if err := utils.SyncVFS(f.DestFs, f.destRoot); err != nil {
		return fmt.Errorf("sync destination: %w", err)
	}

	if f.fcfg.RemoveExtraFiles {
		ignores, err := f.fcfg.CompileIgnores()
		if err != nil {
			return &config.ConfigError{Option: "destinationIgnorePatterns", Reason: "invalid pattern", Err: err}
		}
		removed, err := removeExtra(f.destRoot, f.frozen, ignores)
		if err != nil {
			return fmt.Errorf("remove extra files: %w", err)
		}
		f.met.FilesRemoved = len(removed)
	}

	f.checkLinks()

	if f.cfg.Features.Diagrams {
		if n, err := f.cache.SaveDiagrams(f.d2Cache); err == nil {
			f.met.DiagramsRendered = n
		}
	}
	if err := f.cache.RecordFreeze(); err != nil {
		f.warn.Warnf("Freeze not recorded in cache: %v", err)
	}

	f.met.FilesWritten = len(f.frozen)
	f.met.WarningsEmitted, f.met.WarningsSuppressed = f.warn.Counts()
	f.met.RecordEnd()
	f.met.Print()
	return nil
}

// verifyCache rebuilds the cache when the configuration that shapes
// rendered HTML changed since the last freeze.
func (f *Freezer) verifyCache() error {
	configHash, err := utils.HashFiles([]string{config.BlogFile, config.FreezeFile})
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}
	id := cache.HashString(fmt.Sprintf("%s|%s|%t|%t|%d",
		configHash, f.fcfg.BaseURL, f.fcfg.RelativeURLs, f.cfg.CompressImages, cache.SchemaVersion))

	needsRebuild, err := f.cache.VerifyCacheID(id)
	if err != nil {
		return err
	}
	if needsRebuild || f.cfg.ForceRebuild {
		if needsRebuild {
			fmt.Println("🔄 Configuration changed, rebuilding the freeze cache.")
		}
		if err := f.cache.Clear(); err != nil {
			return err
		}
	}
	return f.cache.SetCacheID(id)
}

// markFrozen records a destination-relative output path as produced by
// this freeze.
func (f *Freezer) markFrozen(rel string) {
	f.mu.Lock()
	f.frozen[filepath.ToSlash(rel)] = true
	f.mu.Unlock()
}

// markFrozenAbs records a VFS path under the destination root.
func (f *Freezer) markFrozenAbs(path string) {
	if rel, err := utils.SafeRel(f.destRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		f.markFrozen(rel)
	}
}

// recordLinks remembers which internal routes a rendered route points
// at, for the post-freeze link check.
func (f *Freezer) recordLinks(route string, targets []string) {
	if len(targets) == 0 {
		return
	}
	f.mu.Lock()
	f.linked[route] = targets
	f.mu.Unlock()
}

// destPath maps a site-absolute route to its VFS output path.
func (f *Freezer) destPath(route string) string {
	return filepath.Join(f.destRoot, filepath.FromSlash(urls.File(route)))
}

// freezeRoute renders a route into the destination with the given
// template function and marks its output file.
func (f *Freezer) freezeRoute(route string, render func(string) error) {
	if err := render(f.destPath(route)); err != nil {
		f.warn.Warnf("Failed to freeze %s: %v", route, err)
		return
	}
	f.markFrozen(urls.File(route))
	f.mu.Lock()
	f.met.PagesFrozen++
	f.mu.Unlock()
}

// checkLinks warns about internal links that point at routes this
// freeze did not produce.
func (f *Freezer) checkLinks() {
	for route, targets := range f.linked {
		for _, target := range targets {
			if !f.frozen[urls.File(target)] {
				f.warn.Warnf("Broken link in %s: %s", route, target)
			}
		}
	}
}

// copyStatic mirrors the static directory into the destination. With
// the asset pipeline enabled, CSS and JS go through esbuild instead
// and the fingerprint map feeds the templates.
func (f *Freezer) copyStatic(ctx context.Context) error {
	// Keeps GitHub Pages from running the output through Jekyll.
	if err := utils.WriteFileVFS(f.DestFs, filepath.Join(f.destRoot, ".nojekyll"), []byte("")); err == nil {
		f.markFrozen(".nojekyll")
	}

	exists, err := afero.DirExists(f.SourceFs, f.cfg.StaticDir)
	if err != nil || !exists {
		return nil
	}

	var exclude []string
	if f.cfg.Features.Assets {
		exclude = []string{".css", ".js"}
	}

	imageCacheDir := filepath.Join(f.cfg.CacheDir, "images")
	err = utils.CopyDirVFS(ctx, f.SourceFs, f.DestFs,
		f.cfg.StaticDir, filepath.Join(f.destRoot, "static"),
		f.cfg.CompressImages, exclude, f.markFrozenAbs, imageCacheDir, f.cfg.ImageWorkers)
	if err != nil {
		return fmt.Errorf("copy static: %w", err)
	}

	if f.cfg.Features.Assets {
		assets, err := utils.BuildAssetsEsbuild(f.SourceFs, f.DestFs,
			f.cfg.StaticDir, f.destRoot, f.cfg.Compress && !f.cfg.IsDev, f.markFrozenAbs)
		if err != nil {
			return fmt.Errorf("build assets: %w", err)
		}
		f.rnd.SetAssets(assets)
	}
	return nil
}
