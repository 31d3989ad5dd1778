// Package diagram renders d2 sources to SVG in-process.
package diagram

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/zeebo/blake3"
	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	d2log "oss.terrastruct.com/d2/lib/log"
	"oss.terrastruct.com/d2/lib/textmeasure"
	"oss.terrastruct.com/util-go/go2"
)

// Theme IDs passed to the d2 renderer. Each diagram freezes twice, one
// rendering per theme.
const (
	ThemeLight int64 = 0
	ThemeDark  int64 = 200
)

// instance is a single renderer worker. Rulers are not safe for
// concurrent measurement, so each worker owns one.
type instance struct {
	ruler *textmeasure.Ruler
}

// Renderer manages a pool of d2 rendering workers.
type Renderer struct {
	pool       chan *instance
	numWorkers int
	initOnce   sync.Once
}

// New creates a Renderer. Workers are initialized lazily on the first
// render so builds without diagrams pay nothing.
func New() *Renderer {
	numWorkers := runtime.NumCPU()
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Renderer{
		pool:       make(chan *instance, numWorkers),
		numWorkers: numWorkers,
	}
}

func (r *Renderer) ensureInitialized() {
	r.initOnce.Do(func() {
		for i := 0; i < r.numWorkers; i++ {
			ruler, err := textmeasure.NewRuler()
			if err != nil {
				log.Printf("⚠️ Failed to initialize text ruler: %v", err)
			}
			r.pool <- &instance{ruler: ruler}
		}
	})
}

// RenderD2 compiles and renders a d2 source with the given theme.
func (r *Renderer) RenderD2(code string, themeID int64) (string, error) {
	r.ensureInitialized()

	instance := <-r.pool
	defer func() { r.pool <- instance }()

	layout := func(ctx context.Context, g *d2graph.Graph) error {
		return d2dagrelayout.Layout(ctx, g, nil)
	}

	compileOpts := &d2lib.CompileOptions{
		Layout: nil,
		Ruler:  instance.ruler,
	}
	compileOpts.LayoutResolver = func(engine string) (d2graph.LayoutGraph, error) {
		return layout, nil
	}

	renderOpts := &d2svg.RenderOpts{
		ThemeID: &themeID,
		Pad:     go2.Pointer(int64(0)),
	}

	ctx := d2log.WithDefault(context.Background())

	diagram, _, err := d2lib.Compile(ctx, code, compileOpts, renderOpts)
	if err != nil {
		return "", fmt.Errorf("d2 compile failed: %w", err)
	}

	out, err := d2svg.Render(diagram, renderOpts)
	if err != nil {
		return "", fmt.Errorf("d2 render failed: %w", err)
	}

	return string(out), nil
}

// HashContent generates a BLAKE3 cache key for rendered content.
func HashContent(kind, content string) string {
	h := blake3.New()
	_, _ = h.WriteString(kind + ":" + content)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
