package freezer

import (
	"fmt"
	"html/template"
	"math"

	"github.com/spf13/afero"

	"frost/builder/cache"
	"frost/builder/content"
	"frost/builder/generators"
	"frost/builder/models"
	"frost/builder/urls"
)

// renderPages freezes the standalone HTML pages. Their bodies bypass
// the markdown pipeline, so internal links are rewritten here.
func (f *Freezer) renderPages(lib *content.Library) {
	for i := range lib.Pages {
		page := &lib.Pages[i]
		route := page.Meta.Route
		page.Meta.Link = f.res.Absolute(route)

		raw := string(page.Body)
		f.recordLinks(route, urls.InternalRoutes(raw))

		res := f.res.At(route)
		data := models.PageData{
			Title:       page.Meta.Title,
			Description: page.Meta.Description,
			Route:       route,
			Permalink:   page.Meta.Link,
			Content:     template.HTML(urls.RewriteHTML(raw, res)),
			Meta:        page.Meta.Meta,
			URLs:        res,
			Freeze:      f.fcfg.Options(),
			Config:      f.cfg,
		}
		f.freezeRoute(route, func(p string) error { return f.rnd.RenderPage(p, data) })
	}
}

// postMetas collects the post metadata in feed order, already sorted
// newest first by the loader.
func postMetas(lib *content.Library) []models.PostMetadata {
	metas := make([]models.PostMetadata, 0, len(lib.Posts))
	for i := range lib.Posts {
		metas = append(metas, lib.Posts[i].Meta)
	}
	return metas
}

// renderIndexes freezes the paginated post listing: "/" for the first
// page, "/2/" and up for the rest.
func (f *Freezer) renderIndexes(lib *content.Library) {
	metas := postMetas(lib)
	perPage := f.cfg.PostsPerPage

	total := int(math.Ceil(float64(len(metas)) / float64(perPage)))
	if total == 0 {
		total = 1
	}

	image := f.homeCard()

	for i := 1; i <= total; i++ {
		route := "/"
		if i > 1 {
			route = fmt.Sprintf("/%d/", i)
		}

		start := (i - 1) * perPage
		end := start + perPage
		if end > len(metas) {
			end = len(metas)
		}

		pg := models.Paginator{
			CurrentPage: i,
			TotalPages:  total,
			HasPrev:     i > 1,
			HasNext:     i < total,
			FirstRoute:  "/#latest",
			LastRoute:   "/#latest",
		}
		if total > 1 {
			pg.LastRoute = fmt.Sprintf("/%d/#latest", total)
		}
		switch {
		case i > 2:
			pg.PrevRoute = fmt.Sprintf("/%d/#latest", i-1)
		case i == 2:
			pg.PrevRoute = "/#latest"
		}
		if i < total {
			pg.NextRoute = fmt.Sprintf("/%d/#latest", i+1)
		}

		data := models.PageData{
			Title:       f.cfg.Title,
			Description: f.cfg.Description,
			Route:       route,
			Permalink:   f.res.Absolute(route),
			IsIndex:     true,
			Posts:       metas[start:end],
			AllTags:     lib.AllTags(),
			Paginator:   pg,
			Image:       image,
			URLs:        f.res.At(route),
			Freeze:      f.fcfg.Options(),
			Config:      f.cfg,
		}
		f.freezeRoute(route, func(p string) error { return f.rnd.RenderIndex(p, data) })
	}
}

// homeCard generates the site-level share card and returns its
// permalink, or "" when cards are off.
func (f *Freezer) homeCard() string {
	if f.cards == nil || !f.cards.Available() {
		return ""
	}
	route := "/static/cards/home.webp"
	f.generateCards([]cardTask{{
		route: route,
		title: f.cfg.Title,
		desc:  f.cfg.Description,
		hash:  cache.HashString(f.cfg.Title + "\x00" + f.cfg.Description),
	}})
	return f.res.Absolute(route)
}

// renderArchives freezes the tag overview at /archive/ and one listing
// per tag beneath it.
func (f *Freezer) renderArchives(lib *content.Library) {
	allTags := lib.AllTags()

	data := models.PageData{
		Title:     "Archive",
		Route:     "/archive/",
		Permalink: f.res.Absolute("/archive/"),
		IsArchive: true,
		Posts:     postMetas(lib),
		AllTags:   allTags,
		URLs:      f.res.At("/archive/"),
		Freeze:    f.fcfg.Options(),
		Config:    f.cfg,
	}
	f.freezeRoute("/archive/", func(p string) error { return f.rnd.RenderArchive(p, data) })

	for _, tag := range allTags {
		tagData := models.PageData{
			Title:     "#" + tag.Name,
			Tag:       tag.Name,
			Route:     tag.Route,
			Permalink: f.res.Absolute(tag.Route),
			IsArchive: true,
			Posts:     lib.Tags[tag.Name],
			AllTags:   allTags,
			URLs:      f.res.At(tag.Route),
			Freeze:    f.fcfg.Options(),
			Config:    f.cfg,
		}
		f.freezeRoute(tag.Route, func(p string) error { return f.rnd.RenderArchive(p, tagData) })
	}
}

// render404 freezes the not-found page at the destination root.
func (f *Freezer) render404() {
	route := "/404.html"
	data := models.PageData{
		Title:     "Page Not Found",
		Route:     route,
		Permalink: f.res.Absolute(route),
		URLs:      f.res.At(route),
		Freeze:    f.fcfg.Options(),
		Config:    f.cfg,
	}
	f.freezeRoute(route, func(p string) error { return f.rnd.Render404(p, data) })
}

// generate writes the feed and sitemap into the destination root.
// Draft posts never appear in either.
func (f *Freezer) generate(lib *content.Library) error {
	published := make([]models.PostMetadata, 0, len(lib.Posts))
	for _, m := range postMetas(lib) {
		if !m.Draft {
			published = append(published, m)
		}
	}

	destFs := afero.NewBasePathFs(f.DestFs, f.destRoot)

	if f.cfg.Features.Generators.RSS {
		if err := generators.GenerateRSS(destFs, f.cfg.Title, f.res.Absolute("/"), f.cfg.Description, published); err != nil {
			return err
		}
		f.markFrozen("rss.xml")
	}
	if f.cfg.Features.Generators.Sitemap {
		if err := generators.GenerateSitemap(destFs, f.res, published, lib.AllTags()); err != nil {
			return err
		}
		f.markFrozen("sitemap.xml")
	}
	return nil
}
