// resolves site-absolute routes into absolute or page-relative hrefs
package urls

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// File maps a site-absolute route to its destination-relative output
// file. Directory-style routes freeze as index.html documents.
func File(route string) string {
	route = strings.TrimPrefix(route, "/")
	if route == "" {
		return "index.html"
	}
	if strings.HasSuffix(route, "/") {
		return route + "index.html"
	}
	return route
}

// Resolver turns routes into hrefs for one rendered page. In absolute
// mode links carry the base URL's path prefix (the site may be mounted
// under a sub-path); in relative mode they are computed against the
// current page so the frozen tree works from file:// or any mount
// point. Full URLs come from Absolute only.
type Resolver struct {
	base     string
	basePath string
	relative bool
	current  string
}

// NewResolver builds a resolver rooted at baseURL. The current page
// starts at "/"; use At for other pages.
func NewResolver(baseURL string, relative bool) *Resolver {
	base := strings.TrimSuffix(baseURL, "/")
	basePath := ""
	if u, err := url.Parse(base); err == nil {
		basePath = strings.TrimSuffix(u.Path, "/")
	}
	return &Resolver{
		base:     base,
		basePath: basePath,
		relative: relative,
		current:  "/",
	}
}

// At returns a copy of the resolver positioned on route.
func (r *Resolver) At(route string) *Resolver {
	return &Resolver{base: r.base, basePath: r.basePath, relative: r.relative, current: route}
}

// Base returns the base URL without its trailing slash.
func (r *Resolver) Base() string { return r.base }

// IsRelative reports whether links resolve relative to the page.
func (r *Resolver) IsRelative() bool { return r.relative }

// Current returns the route the resolver is positioned on.
func (r *Resolver) Current() string { return r.current }

// For resolves a site-absolute route into an href. Anything that does
// not start with "/" (external URLs, anchors, mailto:) passes through,
// as do protocol-relative URLs.
func (r *Resolver) For(route string) string {
	if !isRoute(route) {
		return route
	}
	route, ref := splitRef(route)
	if r.relative {
		return Relative(r.current, route) + ref
	}
	return r.basePath + route + ref
}

// Absolute resolves a route against the base URL regardless of the
// relative option. Feeds and social meta tags need full permalinks.
func (r *Resolver) Absolute(route string) string {
	if !isRoute(route) {
		return route
	}
	route, ref := splitRef(route)
	return r.base + route + ref
}

// Relative computes the href from one route's frozen file to
// another's.
func Relative(from, to string) string {
	fromDir := path.Dir(File(from))
	return relPath(fromDir, File(to))
}

var attrRe = regexp.MustCompile(`(href|src)="(/[^"]*)"`)

// RewriteHTML runs every site-absolute href and src attribute through
// the resolver. Raw HTML bodies bypass the template helpers, so frozen
// pages need this pass to honor the relative and sub-path modes.
func RewriteHTML(doc string, r *Resolver) string {
	return attrRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := attrRe.FindStringSubmatch(m)
		return sub[1] + `="` + r.For(sub[2]) + `"`
	})
}

// InternalRoutes returns the site-absolute routes referenced by href
// and src attributes in doc, fragments and queries stripped.
func InternalRoutes(doc string) []string {
	var routes []string
	seen := make(map[string]bool)
	for _, m := range attrRe.FindAllStringSubmatch(doc, -1) {
		route, _ := splitRef(m[2])
		if route == "" || !isRoute(route) || seen[route] {
			continue
		}
		seen[route] = true
		routes = append(routes, route)
	}
	return routes
}

// isRoute reports whether s is a site-absolute route. "//host/..." has
// a network location and is not ours.
func isRoute(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//")
}

func splitRef(route string) (string, string) {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		return route[:i], route[i:]
	}
	return route, ""
}

func relPath(fromDir, target string) string {
	var fromParts []string
	if fromDir != "." && fromDir != "" {
		fromParts = strings.Split(fromDir, "/")
	}
	targetParts := strings.Split(target, "/")

	common := 0
	for common < len(fromParts) && common < len(targetParts)-1 && fromParts[common] == targetParts[common] {
		common++
	}

	parts := make([]string, 0, len(fromParts)-common+len(targetParts)-common)
	for i := common; i < len(fromParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)
	return strings.Join(parts, "/")
}
