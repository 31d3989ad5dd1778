package content

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func writeFixture(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("fixture %s: %v", path, err)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantTitle string
		wantBody  string
		wantErr   bool
	}{
		{
			name:      "with frontmatter",
			src:       "---\ntitle: Hello\n---\nBody text",
			wantTitle: "Hello",
			wantBody:  "Body text",
		},
		{
			name:     "without frontmatter",
			src:      "Just body",
			wantBody: "Just body",
		},
		{
			name:      "empty body",
			src:       "---\ntitle: Hello\n---\n",
			wantTitle: "Hello",
			wantBody:  "",
		},
		{
			name:    "unterminated block",
			src:     "---\ntitle: Hello\nBody text",
			wantErr: true,
		},
		{
			name:     "dashes inside body",
			src:      "a\n---\nb",
			wantBody: "a\n---\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := SplitFrontmatter([]byte(tt.src))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitFrontmatter: %v", err)
			}
			gotTitle := ""
			if meta != nil {
				if v, ok := meta["title"]; ok {
					gotTitle, _ = v.(string)
				}
			}
			if gotTitle != tt.wantTitle {
				t.Errorf("title = %q, want %q", gotTitle, tt.wantTitle)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestLoad_Posts(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/first.markdown", `---
title: First Post
date: 2026-01-10
tags: [Go, Static Sites]
---
Some **markdown** with enough words to have a reading time.`)

	writeFixture(t, fs, "post/second.markdown", `---
title: Second Post
date: 2026-02-20
---
Newer content.`)

	writeFixture(t, fs, "post/no-date.markdown", `---
title: Draftish
---
Never frozen without a date.`)

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(lib.Posts) != 2 {
		t.Fatalf("Posts length = %d, want 2", len(lib.Posts))
	}

	// Newest first
	if lib.Posts[0].Meta.Title != "Second Post" {
		t.Errorf("Posts[0].Title = %q, want %q", lib.Posts[0].Meta.Title, "Second Post")
	}
	if lib.Posts[1].Meta.Title != "First Post" {
		t.Errorf("Posts[1].Title = %q, want %q", lib.Posts[1].Meta.Title, "First Post")
	}

	first := lib.Posts[1]
	if first.Slug != "first" {
		t.Errorf("Slug = %q, want %q", first.Slug, "first")
	}
	if first.Meta.Route != "/post/first/" {
		t.Errorf("Route = %q, want %q", first.Meta.Route, "/post/first/")
	}
	if first.Meta.DateObj.Format("2006-01-02") != "2026-01-10" {
		t.Errorf("DateObj = %v, want 2026-01-10", first.Meta.DateObj)
	}

	// Tags are lowercased and slugged
	wantTags := []string{"go", "static-sites"}
	if len(first.Meta.Tags) != len(wantTags) {
		t.Fatalf("Tags = %v, want %v", first.Meta.Tags, wantTags)
	}
	for i, tag := range wantTags {
		if first.Meta.Tags[i] != tag {
			t.Errorf("Tags[%d] = %q, want %q", i, first.Meta.Tags[i], tag)
		}
	}

	if first.Meta.ReadingTime < 1 {
		t.Errorf("ReadingTime = %d, want >= 1", first.Meta.ReadingTime)
	}

	// The dateless post is a skipped draft
	if len(lib.Drafts) != 1 || !strings.HasSuffix(lib.Drafts[0], "no-date.markdown") {
		t.Errorf("Drafts = %v, want the dateless post", lib.Drafts)
	}
}

func TestLoad_IncludeDrafts(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/wip.markdown", `---
title: Work In Progress
---
Body.`)

	lib, err := Load(fs, "post", "page", true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(lib.Posts) != 1 {
		t.Fatalf("Posts length = %d, want 1", len(lib.Posts))
	}
	if !lib.Posts[0].Meta.Draft {
		t.Error("dateless post should be marked draft")
	}
}

func TestLoad_UntaggedDefault(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/bare.markdown", `---
title: Bare
date: 2026-03-01
---
Body.`)

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(lib.Posts) != 1 {
		t.Fatalf("Posts length = %d, want 1", len(lib.Posts))
	}
	tags := lib.Posts[0].Meta.Tags
	if len(tags) != 1 || tags[0] != "untagged" {
		t.Errorf("Tags = %v, want [untagged]", tags)
	}

	if _, ok := lib.Tags["untagged"]; !ok {
		t.Error("Tags map should group the untagged post")
	}
}

func TestLoad_ExplicitDraftFlag(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/hidden.markdown", `---
title: Hidden
date: 2026-03-01
draft: true
---
Body.`)

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(lib.Posts) != 0 {
		t.Errorf("Posts length = %d, want 0", len(lib.Posts))
	}
	if len(lib.Drafts) != 1 {
		t.Errorf("Drafts length = %d, want 1", len(lib.Drafts))
	}
}

func TestLoad_Pages(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "page/about.html", `---
title: About
description: Who writes this
---
<p>Hello there.</p>`)

	writeFixture(t, fs, "page/notes/setup.html", `<p>No frontmatter here.</p>`)

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(lib.Pages) != 2 {
		t.Fatalf("Pages length = %d, want 2", len(lib.Pages))
	}

	var about, setup *Page
	for i := range lib.Pages {
		switch lib.Pages[i].Slug {
		case "about":
			about = &lib.Pages[i]
		case "notes/setup":
			setup = &lib.Pages[i]
		}
	}
	if about == nil || setup == nil {
		t.Fatalf("missing expected pages, got %+v", lib.Pages)
	}

	if about.Meta.Title != "About" {
		t.Errorf("about title = %q, want %q", about.Meta.Title, "About")
	}
	if about.Meta.Route != "/page/about/" {
		t.Errorf("about route = %q, want %q", about.Meta.Route, "/page/about/")
	}
	if !strings.Contains(string(about.Body), "Hello there") {
		t.Errorf("about body = %q, should contain greeting", about.Body)
	}

	// Title falls back to the slug base
	if setup.Meta.Title != "Setup" {
		t.Errorf("setup title = %q, want %q", setup.Meta.Title, "Setup")
	}
	if setup.Meta.Route != "/page/notes/setup/" {
		t.Errorf("setup route = %q, want %q", setup.Meta.Route, "/page/notes/setup/")
	}
}

func TestLoad_MissingRoots(t *testing.T) {
	fs := afero.NewMemMapFs()

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load with missing roots: %v", err)
	}
	if len(lib.Posts) != 0 || len(lib.Pages) != 0 {
		t.Errorf("expected empty library, got %d posts, %d pages", len(lib.Posts), len(lib.Pages))
	}
}

func TestLoad_InvalidDate(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/bad.markdown", `---
title: Bad Date
date: "next tuesday"
---
Body.`)

	if _, err := Load(fs, "post", "page", false); err == nil {
		t.Error("Load should fail on an unparseable date")
	}
}

func TestLoad_QuotedDateString(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/quoted.markdown", `---
title: Quoted
date: "2026-04-05 09:30"
---
Body.`)

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lib.Posts) != 1 {
		t.Fatalf("Posts length = %d, want 1", len(lib.Posts))
	}

	want := time.Date(2026, 4, 5, 9, 30, 0, 0, time.UTC)
	if !lib.Posts[0].Meta.DateObj.Equal(want) {
		t.Errorf("DateObj = %v, want %v", lib.Posts[0].Meta.DateObj, want)
	}
}

func TestAllTags(t *testing.T) {
	fs := afero.NewMemMapFs()

	writeFixture(t, fs, "post/a.markdown", "---\ntitle: A\ndate: 2026-01-01\ntags: [go]\n---\nBody.")
	writeFixture(t, fs, "post/b.markdown", "---\ntitle: B\ndate: 2026-01-02\ntags: [go, blog]\n---\nBody.")

	lib, err := Load(fs, "post", "page", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tags := lib.AllTags()
	if len(tags) != 2 {
		t.Fatalf("AllTags length = %d, want 2", len(tags))
	}

	// go has two posts, blog one
	if tags[0].Name != "go" || tags[0].Count != 2 {
		t.Errorf("tags[0] = %+v, want go with count 2", tags[0])
	}
	if tags[1].Name != "blog" || tags[1].Count != 1 {
		t.Errorf("tags[1] = %+v, want blog with count 1", tags[1])
	}

	if tags[0].Route != "/archive/go/" {
		t.Errorf("tag route = %q, want %q", tags[0].Route, "/archive/go/")
	}
	if tags[0].Display != "Go" {
		t.Errorf("tag display = %q, want %q", tags[0].Display, "Go")
	}
}
