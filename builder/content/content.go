// loads the blog library: markdown posts, standalone pages, tags
package content

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"frost/builder/models"
	"frost/builder/utils"
)

// Post is a markdown source file under the post root. Source keeps
// the full file including frontmatter; the markdown pipeline strips
// it again during conversion.
type Post struct {
	Meta   models.PostMetadata
	Front  map[string]interface{}
	Source []byte
	Path   string
	Slug   string
}

// Page is a raw HTML file under the page root. Its body lands inside
// the layout template untouched.
type Page struct {
	Meta models.PageMetadata
	Body []byte
	Path string
	Slug string
}

// Library is everything one freeze works from.
type Library struct {
	Posts  []Post
	Pages  []Page
	Tags   map[string][]models.PostMetadata
	Drafts []string // source paths skipped for missing dates or draft flags
}

// AllTags returns tag groups ordered by frequency, then name.
func (l *Library) AllTags() []models.TagData {
	tags := make([]models.TagData, 0, len(l.Tags))
	for name, posts := range l.Tags {
		tags = append(tags, models.TagData{
			Name:    name,
			Display: utils.TitleCase(strings.ReplaceAll(name, "-", " ")),
			Route:   "/archive/" + name + "/",
			Count:   len(posts),
		})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count == tags[j].Count {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].Count > tags[j].Count
	})
	return tags
}

// Load walks the page and post roots and assembles the library.
// Posts without a date are drafts and are skipped unless
// includeDrafts is set. Posts sort newest first.
func Load(fsys afero.Fs, postRoot, pageRoot string, includeDrafts bool) (*Library, error) {
	lib := &Library{Tags: make(map[string][]models.PostMetadata)}

	if err := loadPosts(fsys, postRoot, includeDrafts, lib); err != nil {
		return nil, err
	}
	if err := loadPages(fsys, pageRoot, lib); err != nil {
		return nil, err
	}

	sort.Slice(lib.Posts, func(i, j int) bool {
		a, b := lib.Posts[i].Meta, lib.Posts[j].Meta
		if a.DateObj.Equal(b.DateObj) {
			return a.Title > b.Title
		}
		return a.DateObj.After(b.DateObj)
	})

	for _, p := range lib.Posts {
		for _, tag := range p.Meta.Tags {
			lib.Tags[tag] = append(lib.Tags[tag], p.Meta)
		}
	}

	return lib, nil
}

func loadPosts(fsys afero.Fs, root string, includeDrafts bool, lib *Library) error {
	return afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".markdown" && ext != ".md" {
			return nil
		}

		src, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		front, body, err := SplitFrontmatter(src)
		if err != nil {
			return fmt.Errorf("post %s: %w", path, err)
		}

		slug := slugFor(root, path)
		date, hasDate, err := parseDate(front)
		if err != nil {
			return fmt.Errorf("post %s: %w", path, err)
		}

		draft := !hasDate || utils.GetBool(front, "draft")
		if draft && !includeDrafts {
			lib.Drafts = append(lib.Drafts, path)
			return nil
		}

		tags := normalizeTags(utils.GetSlice(front, "tags"))
		if len(tags) == 0 {
			tags = []string{"untagged"}
		}

		title := utils.GetString(front, "title")
		if title == "" {
			title = utils.TitleCase(strings.ReplaceAll(filepath.Base(slug), "-", " "))
		}

		wordCount := len(strings.Fields(string(body)))
		readingTime := int(math.Ceil(float64(wordCount) / 120.0))

		hasMath := utils.GetBool(front, "math") ||
			strings.Contains(string(body), "$$") ||
			strings.Contains(string(body), "\\(")

		lib.Posts = append(lib.Posts, Post{
			Meta: models.PostMetadata{
				Title:       title,
				Description: utils.GetString(front, "description"),
				Route:       "/post/" + slug + "/",
				Tags:        tags,
				ReadingTime: readingTime,
				Draft:       draft,
				DateObj:     date,
				HasMath:     hasMath,
			},
			Front:  front,
			Source: src,
			Path:   filepath.ToSlash(path),
			Slug:   slug,
		})
		return nil
	})
}

func loadPages(fsys afero.Fs, root string, lib *Library) error {
	return afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".html" {
			return nil
		}

		src, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		front, body, err := SplitFrontmatter(src)
		if err != nil {
			return fmt.Errorf("page %s: %w", path, err)
		}

		slug := slugFor(root, path)
		title := utils.GetString(front, "title")
		if title == "" {
			title = utils.TitleCase(strings.ReplaceAll(filepath.Base(slug), "-", " "))
		}

		lib.Pages = append(lib.Pages, Page{
			Meta: models.PageMetadata{
				Title:       title,
				Description: utils.GetString(front, "description"),
				Route:       "/page/" + slug + "/",
				Meta:        front,
			},
			Body: body,
			Path: filepath.ToSlash(path),
			Slug: slug,
		})
		return nil
	})
}

func slugFor(root, path string) string {
	rel, err := utils.SafeRel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.ReplaceAll(t, " ", "-")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// parseDate reads the date field, which YAML may have decoded into a
// time.Time already or left as a string.
func parseDate(front map[string]interface{}) (time.Time, bool, error) {
	v, ok := front["date"]
	if !ok || v == nil {
		return time.Time{}, false, nil
	}
	if t, ok := v.(time.Time); ok {
		return t, true, nil
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q", s)
}
