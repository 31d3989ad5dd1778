package parser

import (
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"frost/builder/urls"
)

// ContextKeyRoute stores the site-absolute route of the document being
// converted. The URL transformer positions the resolver on it, so set
// it before every Convert call.
var ContextKeyRoute = parser.NewContextKey()

var linkedRoutesKey = parser.NewContextKey()

// GetLinkedRoutes returns the internal routes the document links to,
// in source order. The freezer checks them against the frozen set.
func GetLinkedRoutes(pc parser.Context) []string {
	if v := pc.Get(linkedRoutesKey); v != nil {
		return v.([]string)
	}
	return nil
}

func recordRoute(pc parser.Context, route string) {
	existing, _ := pc.Get(linkedRoutesKey).([]string)
	pc.Set(linkedRoutesKey, append(existing, route))
}

// URLTransformer rewrites link and image destinations: external links
// open in a new tab, markdown source links become routes, and
// site-absolute routes go through the resolver.
type URLTransformer struct {
	Resolver      *urls.Resolver
	RewriteImages bool
}

func (t *URLTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	res := t.Resolver
	if res != nil {
		if route, ok := pc.Get(ContextKeyRoute).(string); ok && route != "" {
			res = res.At(route)
		}
	}

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch target := n.(type) {
		case *ast.Link:
			t.processDestination(target, target.Destination, res, pc)
		case *ast.Image:
			t.processDestination(target, target.Destination, res, pc)
		}
		return ast.WalkContinue, nil
	})
}

func (t *URLTransformer) processDestination(n ast.Node, dest []byte, res *urls.Resolver, pc parser.Context) {
	href := string(dest)
	if href == "" || strings.HasPrefix(href, "#") {
		return
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "//") {
		if _, isLink := n.(*ast.Link); isLink {
			n.SetAttribute([]byte("target"), []byte("_blank"))
			n.SetAttribute([]byte("rel"), []byte("noopener noreferrer"))
		}
		return
	}

	ext := strings.ToLower(filepath.Ext(stripRef(href)))

	if t.RewriteImages && (ext == ".jpg" || ext == ".jpeg" || ext == ".png") {
		base := stripRef(href)
		href = base[:len(base)-len(ext)] + ".webp" + refOf(href)
	}

	// A link to a markdown source points at the post route it
	// freezes to: other-post.md -> /post/other-post/.
	if ext == ".md" || ext == ".markdown" {
		slug := strings.ToLower(strings.TrimSuffix(stripRef(href), ext))
		slug = strings.TrimPrefix(slug, "./")
		if !strings.HasPrefix(slug, "/") {
			slug = "/post/" + slug
		}
		href = strings.TrimSuffix(slug, "/") + "/" + refOf(href)
	}

	if _, isImage := n.(*ast.Image); isImage {
		n.SetAttribute([]byte("loading"), []byte("lazy"))
	}

	if strings.HasPrefix(href, "/") {
		recordRoute(pc, stripRef(href))
		if res != nil {
			href = res.For(href)
		}
	}

	switch node := n.(type) {
	case *ast.Link:
		node.Destination = []byte(href)
	case *ast.Image:
		node.Destination = []byte(href)
	}
}

func stripRef(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		return href[:i]
	}
	return href
}

func refOf(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		return href[i:]
	}
	return ""
}
