// Package testutil holds the fixture site shared by the integration
// tests: two dated posts, one raw HTML page and one static file, with
// templates exercising the URL resolver and the paginator.
package testutil

import (
	"testing"
)

// LayoutTemplate is a minimal layout with resolver-driven nav links.
const LayoutTemplate = `<!DOCTYPE html>
<html>
<head><title>{{ .Title }}</title></head>
<body>
<nav><a href="{{ .URLs.For "/" }}">Home</a> <a href="{{ .URLs.For "/archive/" }}">Archive</a></nav>
<main>{{ .Content }}</main>
</body>
</html>
`

// IndexTemplate lists the posts of one page and links the neighbors.
const IndexTemplate = `<!DOCTYPE html>
<html>
<head><title>{{ .Title }}</title></head>
<body>
<ul>
{{ range .Posts }}<li><a href="{{ $.URLs.For .Route }}">{{ .Title }}</a></li>
{{ end }}</ul>
{{ if .Paginator.HasPrev }}<a class="prev" href="{{ .URLs.For .Paginator.PrevRoute }}">Newer</a>{{ end }}
{{ if .Paginator.HasNext }}<a class="next" href="{{ .URLs.For .Paginator.NextRoute }}">Older</a>{{ end }}
</body>
</html>
`

// HelloPost is the newest fixture post. It links SecondPost with a
// site-absolute markdown link.
const HelloPost = `---
title: Hello World
date: 2026-03-01
tags: [go, intro]
---

# Hello World

The first post, pointing at [the second](/post/second-post/).
`

// SecondPost is the older fixture post.
const SecondPost = `---
title: Second Post
date: 2026-02-01
tags: [go]
---

A shorter body.
`

// AboutPage is a raw HTML page with site-absolute links in its body.
const AboutPage = `---
title: About
---
<p>See <a href="/archive/">the archive</a> or go <a href="/">home</a>.</p>
`

// WriteSite lays the fixture site out in a fresh working directory
// and makes that directory current for the rest of the test.
func WriteSite(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	WriteFile(t, "templates/layout.html", LayoutTemplate)
	WriteFile(t, "templates/index.html", IndexTemplate)
	WriteFile(t, "post/hello-world.md", HelloPost)
	WriteFile(t, "post/second-post.md", SecondPost)
	WriteFile(t, "page/about.html", AboutPage)
	WriteFile(t, "static/robots.txt", "User-agent: *\n")
}
