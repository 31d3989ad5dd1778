package renderer

import (
	"html/template"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"frost/builder/models"
	"frost/builder/utils"
)

func writeTemplate(t *testing.T, fsys afero.Fs, name, body string) {
	t.Helper()
	if err := afero.WriteFile(fsys, "templates/"+name, []byte(body), 0644); err != nil {
		t.Fatalf("write template %s: %v", name, err)
	}
}

func readOutput(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestNew_MissingLayout(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()

	if _, err := New(srcFs, "templates", destFs, false); err == nil {
		t.Fatal("expected error when layout.html is missing")
	}
}

func TestRenderPage(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html",
		`<title>{{ .Title }}</title><main>{{ .Content }}</main>`)

	r, err := New(srcFs, "templates", destFs, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := models.PageData{
		Title:   "Hello World",
		Content: template.HTML("<p>body</p>"),
	}
	if err := r.RenderPage("post/hello-world/index.html", data); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}

	got := readOutput(t, destFs, "post/hello-world/index.html")
	if !strings.Contains(got, "<title>Hello World</title>") {
		t.Errorf("missing title, got %q", got)
	}
	if !strings.Contains(got, "<p>body</p>") {
		t.Errorf("content not rendered unescaped, got %q", got)
	}
}

func TestRenderIndex_FallsBackToLayout(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html", `layout:{{ .Title }}`)

	r, err := New(srcFs, "templates", destFs, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Index != nil {
		t.Fatal("expected nil index template")
	}

	if err := r.RenderIndex("index.html", models.PageData{Title: "Home"}); err != nil {
		t.Fatalf("RenderIndex: %v", err)
	}
	if got := readOutput(t, destFs, "index.html"); got != "layout:Home" {
		t.Errorf("got %q", got)
	}
}

func TestRenderArchive_FallbackChain(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html", `layout`)
	writeTemplate(t, srcFs, "index.html", `index:{{ .Tag }}`)

	r, err := New(srcFs, "templates", destFs, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Archive template is absent, so the index template serves.
	if err := r.RenderArchive("archive/index.html", models.PageData{Tag: "go"}); err != nil {
		t.Fatalf("RenderArchive: %v", err)
	}
	if got := readOutput(t, destFs, "archive/index.html"); got != "index:go" {
		t.Errorf("got %q", got)
	}
}

func TestRender404_FallsBackToLayout(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html", `layout:{{ .Title }}`)

	r, err := New(srcFs, "templates", destFs, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Render404("404.html", models.PageData{Title: "Not Found"}); err != nil {
		t.Fatalf("Render404: %v", err)
	}
	if got := readOutput(t, destFs, "404.html"); got != "layout:Not Found" {
		t.Errorf("got %q", got)
	}
}

func TestTemplateFuncs(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html",
		`{{ lower .Title }}|{{ title .Tag }}|{{ hasPrefix .Route "/post/" }}`)

	r, err := New(srcFs, "templates", destFs, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := models.PageData{Title: "LOUD", Tag: "go", Route: "/post/x/"}
	if err := r.RenderPage("out.html", data); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if got := readOutput(t, destFs, "out.html"); got != "loud|Go|true" {
		t.Errorf("got %q", got)
	}
}

func TestAssetLookup(t *testing.T) {
	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html", `{{ .Asset "/static/style.css" }}`)

	r, err := New(srcFs, "templates", destFs, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.SetAssets(map[string]string{"/static/style.css": "/static/style.a1b2c3.css"})

	if err := r.RenderPage("out.html", models.PageData{}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if got := readOutput(t, destFs, "out.html"); got != "/static/style.a1b2c3.css" {
		t.Errorf("got %q", got)
	}
}

func TestCompressOutput(t *testing.T) {
	utils.InitMinifier()

	srcFs := afero.NewMemMapFs()
	destFs := afero.NewMemMapFs()
	writeTemplate(t, srcFs, "layout.html",
		"<html>\n  <body>\n    <p>{{ .Title }}</p>\n  </body>\n</html>")

	r, err := New(srcFs, "templates", destFs, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.RenderPage("out.html", models.PageData{Title: "hi"}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}

	got := readOutput(t, destFs, "out.html")
	if strings.Contains(got, "\n  ") {
		t.Errorf("output not minified: %q", got)
	}
	if !strings.Contains(got, "<p>hi</p>") {
		t.Errorf("content lost during minification: %q", got)
	}
}
