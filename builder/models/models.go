// defines the data structures used by templates and generators
package models

import (
	"encoding/xml"
	"html/template"
	"time"

	"frost/builder/urls"
)

// --- TOC Structure ---
type TOCEntry struct {
	ID    string
	Text  string
	Level int
}

// PostMetadata represents the frontmatter and derived data of a markdown post.
// Route is the site-absolute path ("/post/slug/"); Link is the full
// permalink used by feeds and social tags.
type PostMetadata struct {
	Title       string
	Description string
	Route       string
	Link        string
	Tags        []string
	ReadingTime int
	Draft       bool
	DateObj     time.Time
	HasMath     bool
}

// PageMetadata represents the frontmatter of a standalone HTML page.
type PageMetadata struct {
	Title       string
	Description string
	Route       string
	Link        string
	Meta        map[string]interface{}
}

// TagData represents a tag and its frequency.
type TagData struct {
	Name    string
	Display string
	Route   string
	Count   int
}

// Paginator holds state for pagination. Routes are site-absolute and
// resolved per page, so relative freezes stay self-contained.
type Paginator struct {
	CurrentPage int
	TotalPages  int
	PrevRoute   string
	NextRoute   string
	FirstRoute  string
	LastRoute   string
	HasPrev     bool
	HasNext     bool
}

// PageData is the context passed to HTML templates.
type PageData struct {
	Title       string
	Description string
	Route       string
	Permalink   string
	Content     template.HTML
	Meta        map[string]interface{}
	IsIndex     bool
	IsArchive   bool
	Date        time.Time
	Posts       []PostMetadata
	AllTags     []TagData
	Tag         string
	TOC         []TOCEntry
	Paginator   Paginator
	HasMath     bool
	Image       string
	Assets      map[string]string

	// URLs resolves site-absolute routes for the current page,
	// honoring the relative-URL freeze option.
	URLs *urls.Resolver

	// Freeze is the full freeze option mapping, keyed by option name.
	Freeze map[string]interface{}

	// Config exposes the site configuration (Title, Author, ...).
	Config interface{}
}

// Asset resolves a static asset path into an href, swapping in the
// fingerprinted name when one is known. Resolution goes through URLs
// so asset links honor the relative and sub-path modes like every
// other link.
func (d PageData) Asset(path string) string {
	if v, ok := d.Assets[path]; ok {
		path = v
	}
	if d.URLs != nil {
		return d.URLs.For(path)
	}
	return path
}

// --- Sitemap Structures ---

type UrlSet struct {
	XMLName xml.Name `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	Urls    []Url    `xml:"url"`
}

type Url struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// --- RSS Structures ---

type Rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []Item `xml:"item"`
}

type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Guid        string `xml:"guid"`
}
