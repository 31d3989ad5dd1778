// Package scaffold initializes a new site: configuration, templates,
// a stylesheet and a first post.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const defaultBlogYaml = `# Site configuration
title: "My Frost Blog"
description: "Notes frozen in time"
language: "en"

author:
  name: "Author Name"
  url: "https://example.com"

postsPerPage: 8
compress: true
compressImages: false

features:
  generators:
    rss: true
    sitemap: true
    socialCards: false # needs TTF fonts under fonts/
  diagrams: true
  assets: true
`

const defaultFreezingYaml = `# Freeze configuration
# baseURL must be absolute unless relativeURLs is on.
baseURL: "http://localhost/"
destination: "build"

# Self-contained output that works from file:// or any mount point.
relativeURLs: false

# Delete files in the destination that the freeze did not produce.
# Paths matching destinationIgnorePatterns are left alone.
removeExtraFiles: true
destinationIgnorePatterns: [".*"]

# Warnings matching these patterns are silenced.
suppressedWarnings: ["Nothing frozen*"]

# Print full error chains on failure.
debug: false
`

const layoutTemplate = `<!DOCTYPE html>
<html lang="{{ .Config.Language }}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  {{ if .Description }}<meta name="description" content="{{ .Description }}">{{ end }}
  {{ if .Permalink }}<link rel="canonical" href="{{ .Permalink }}">{{ end }}
  {{ if .Image }}<meta property="og:image" content="{{ .Image }}">{{ end }}
  <link rel="stylesheet" href="{{ .Asset "/static/css/site.css" }}">
  {{ if .HasMath }}
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.css">
  <script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.js"></script>
  <script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/contrib/auto-render.min.js" onload="renderMathInElement(document.body)"></script>
  {{ end }}
</head>
<body>
  <header>
    <nav>
      <a href="{{ .URLs.For "/" }}">Home</a>
      <a href="{{ .URLs.For "/archive/" }}">Archive</a>
      <a href="{{ .URLs.For "/page/about/" }}">About</a>
      <a href="{{ .URLs.For "/rss.xml" }}">RSS</a>
    </nav>
  </header>
  <main>
    <article>
      <h1>{{ .Title }}</h1>
      {{ if not .Date.IsZero }}<p class="meta">{{ .Date.Format "Jan 2, 2006" }}</p>{{ end }}
      {{ if .TOC }}
      <aside class="toc">
        {{ range .TOC }}<a class="toc-{{ .Level }}" href="#{{ .ID }}">{{ .Text }}</a>
        {{ end }}
      </aside>
      {{ end }}
      {{ .Content }}
    </article>
  </main>
  <footer>
    <p>&copy; {{ now.Year }} {{ .Config.Author.Name }}</p>
  </footer>
  <script>
    if (["localhost", "127.0.0.1"].includes(location.hostname)) {
      new EventSource("/events").onmessage = function (e) {
        if (e.data === "reload") location.reload();
      };
    }
  </script>
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="{{ .Config.Language }}">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  {{ if .Description }}<meta name="description" content="{{ .Description }}">{{ end }}
  <link rel="stylesheet" href="{{ .Asset "/static/css/site.css" }}">
</head>
<body>
  <header>
    <h1><a href="{{ .URLs.For "/" }}">{{ .Config.Title }}</a></h1>
    <p>{{ .Config.Description }}</p>
  </header>
  <main id="latest">
    {{ range .Posts }}
    <section class="post-card">
      <h2><a href="{{ $.URLs.For .Route }}">{{ .Title }}</a></h2>
      <p class="meta">{{ .DateObj.Format "Jan 2, 2006" }} &middot; {{ .ReadingTime }} min</p>
      {{ if .Description }}<p>{{ .Description }}</p>{{ end }}
    </section>
    {{ end }}
    <nav class="pagination">
      {{ if .Paginator.HasPrev }}<a href="{{ .URLs.For .Paginator.PrevRoute }}">&larr; Newer</a>{{ end }}
      {{ if gt .Paginator.TotalPages 1 }}<span>{{ .Paginator.CurrentPage }} / {{ .Paginator.TotalPages }}</span>{{ end }}
      {{ if .Paginator.HasNext }}<a href="{{ .URLs.For .Paginator.NextRoute }}">Older &rarr;</a>{{ end }}
    </nav>
  </main>
  <footer>
    <p>
      {{ range .AllTags }}<a class="tag" href="{{ $.URLs.For .Route }}">#{{ .Name }}</a> {{ end }}
    </p>
  </footer>
  <script>
    if (["localhost", "127.0.0.1"].includes(location.hostname)) {
      new EventSource("/events").onmessage = function (e) {
        if (e.data === "reload") location.reload();
      };
    }
  </script>
</body>
</html>
`

const archiveTemplate = `<!DOCTYPE html>
<html lang="{{ .Config.Language }}">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="{{ .Asset "/static/css/site.css" }}">
</head>
<body>
  <header>
    <nav><a href="{{ .URLs.For "/" }}">Home</a></nav>
    <h1>{{ .Title }}</h1>
  </header>
  <main>
    {{ if not .Tag }}
    <p>
      {{ range .AllTags }}<a class="tag" href="{{ $.URLs.For .Route }}">#{{ .Name }} ({{ .Count }})</a> {{ end }}
    </p>
    {{ end }}
    <ul>
      {{ range .Posts }}
      <li>
        <time>{{ .DateObj.Format "2006-01-02" }}</time>
        <a href="{{ $.URLs.For .Route }}">{{ .Title }}</a>
      </li>
      {{ end }}
    </ul>
  </main>
</body>
</html>
`

const notFoundTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="{{ .Asset "/static/css/site.css" }}">
</head>
<body>
  <main>
    <h1>404</h1>
    <p>This page was not frozen. <a href="{{ .URLs.For "/" }}">Back home.</a></p>
  </main>
</body>
</html>
`

const siteCSS = `:root {
  --bg: #fbfbfd;
  --fg: #1c1e26;
  --accent: #2563eb;
  --muted: #6b7280;
}

body {
  max-width: 44rem;
  margin: 0 auto;
  padding: 1rem;
  font-family: system-ui, sans-serif;
  line-height: 1.6;
  background: var(--bg);
  color: var(--fg);
}

a { color: var(--accent); }
.meta, time { color: var(--muted); font-size: 0.9rem; }
.tag { margin-right: 0.5rem; }
.toc { border-left: 2px solid var(--accent); padding-left: 1rem; }
.toc a { display: block; }
.toc .toc-3 { padding-left: 1rem; }
.pagination { display: flex; gap: 1rem; justify-content: center; }

pre {
  padding: 1rem;
  overflow-x: auto;
  border-radius: 6px;
}
`

const firstPost = `---
title: "Welcome to Frost"
date: %s
tags: [meta]
description: "Your site freezes into plain files."
---

Everything under post/ becomes a page under /post/; this file is
post/welcome.md. Edit it, save, and the dev server reloads.

## Writing

Markdown with fenced code, tables and math:

` + "```go" + `
func main() {
	fmt.Println("frozen")
}
` + "```" + `

## Freezing

Run the freeze and the whole site lands in the destination
directory as plain files:

    frost freeze

Links like [the archive](/archive/) are site-absolute in sources and
resolved at freeze time, so the output works wherever you host it.
See [about](/page/about/) for the page flavor.
`

const aboutPage = `---
title: "About"
description: "What this site is."
---
<p>This page is raw HTML from page/about.html. Its body skips the
markdown pipeline but site-absolute links like
<a href="/archive/">the archive</a> are still rewritten when the
site freezes.</p>
`

// Run lays a new site out in the current directory. Existing files
// are never overwritten.
func Run(args []string) error {
	fmt.Println("🌱 Initializing a new site...")

	for _, dir := range []string{"post", "page", "templates", "static/css", "fonts"} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		fmt.Printf("   📁 Created '%s/'\n", dir)
	}

	files := []struct {
		path    string
		content string
	}{
		{"blog.yaml", defaultBlogYaml},
		{"freezing.yaml", defaultFreezingYaml},
		{filepath.Join("templates", "layout.html"), layoutTemplate},
		{filepath.Join("templates", "index.html"), indexTemplate},
		{filepath.Join("templates", "archive.html"), archiveTemplate},
		{filepath.Join("templates", "404.html"), notFoundTemplate},
		{filepath.Join("static", "css", "site.css"), siteCSS},
		{filepath.Join("post", "welcome.md"), fmt.Sprintf(firstPost, time.Now().Format("2006-01-02"))},
		{filepath.Join("page", "about.html"), aboutPage},
	}

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Printf("   ⚠️  '%s' already exists, skipping.\n", f.path)
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("create %s: %w", f.path, err)
		}
		fmt.Printf("   📄 Created '%s'\n", f.path)
	}

	fmt.Println("\n✅ Site initialized.")
	fmt.Println("   👉 frost serve    preview with auto-reload")
	fmt.Println("   👉 frost freeze   write the static tree")
	fmt.Println("   💡 Social cards need TTF fonts under fonts/ (Inter-Bold.ttf,")
	fmt.Println("      Inter-Medium.ttf, Inter-Regular.ttf) and the feature flag on.")
	return nil
}
