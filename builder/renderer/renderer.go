// Package renderer executes page templates into the freeze
// filesystem.
package renderer

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"frost/builder/models"
	"frost/builder/utils"
)

// Renderer holds the parsed template set. Index, Archive and NotFound
// are optional; missing ones fall back down the chain to Layout.
type Renderer struct {
	Layout   *template.Template
	Index    *template.Template
	Archive  *template.Template
	NotFound *template.Template
	Assets   map[string]string
	Compress bool
	DestFs   afero.Fs
}

// New parses the template set from templateDir on srcFs. Only
// layout.html is required.
func New(srcFs afero.Fs, templateDir string, destFs afero.Fs, compress bool) (*Renderer, error) {
	funcMap := template.FuncMap{
		"lower":     strings.ToLower,
		"hasPrefix": strings.HasPrefix,
		"now":       time.Now,
		"title":     utils.TitleCase,
	}

	layout, err := loadTemplate(srcFs, templateDir, "layout.html", funcMap)
	if err != nil {
		return nil, fmt.Errorf("layout template: %w", err)
	}

	index, err := loadTemplate(srcFs, templateDir, "index.html", funcMap)
	if err != nil {
		log.Printf("⚠️  Index template not found, using layout.html for the index. (%v)", err)
		index = nil
	}

	archive, err := loadTemplate(srcFs, templateDir, "archive.html", funcMap)
	if err != nil {
		log.Printf("⚠️  Archive template not found, using the index template. (%v)", err)
		archive = nil
	}

	notFound, err := loadTemplate(srcFs, templateDir, "404.html", funcMap)
	if err != nil {
		log.Printf("⚠️  404 template not found, using layout.html for the 404 page. (%v)", err)
		notFound = nil
	}

	return &Renderer{
		Layout:   layout,
		Index:    index,
		Archive:  archive,
		NotFound: notFound,
		Compress: compress,
		DestFs:   destFs,
	}, nil
}

func loadTemplate(fsys afero.Fs, dir, name string, funcMap template.FuncMap) (*template.Template, error) {
	src, err := afero.ReadFile(fsys, filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(funcMap).Parse(string(src))
}

// SetAssets installs the fingerprinted asset map used by the Asset
// template helper.
func (r *Renderer) SetAssets(assets map[string]string) {
	r.Assets = assets
}

// RenderPage writes a post or standalone page with the layout
// template.
func (r *Renderer) RenderPage(path string, data models.PageData) error {
	return r.execute(r.Layout, path, data)
}

// RenderIndex writes a paginated index page.
func (r *Renderer) RenderIndex(path string, data models.PageData) error {
	tmpl := r.Index
	if tmpl == nil {
		tmpl = r.Layout
	}
	return r.execute(tmpl, path, data)
}

// RenderArchive writes the archive or a per-tag listing.
func (r *Renderer) RenderArchive(path string, data models.PageData) error {
	tmpl := r.Archive
	if tmpl == nil {
		tmpl = r.Index
	}
	if tmpl == nil {
		tmpl = r.Layout
	}
	return r.execute(tmpl, path, data)
}

// Render404 writes the not-found page.
func (r *Renderer) Render404(path string, data models.PageData) error {
	tmpl := r.NotFound
	if tmpl == nil {
		tmpl = r.Layout
	}
	return r.execute(tmpl, path, data)
}

func (r *Renderer) execute(tmpl *template.Template, path string, data models.PageData) error {
	data.Assets = r.Assets

	if err := r.DestFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	f, err := r.DestFs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	bw := utils.SharedBufioWriterPool.Get(f)
	defer func() {
		_ = bw.Flush()
		utils.SharedBufioWriterPool.Put(bw)
	}()

	var w io.Writer = bw

	if r.Compress && utils.Minifier != nil {
		mw := utils.Minifier.Writer("text/html", bw)
		defer func() { _ = mw.Close() }()
		w = mw
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}
