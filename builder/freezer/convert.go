package freezer

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"frost/builder/cache"
	"frost/builder/content"
	"frost/builder/models"
	mdParser "frost/builder/parser"
	"frost/builder/urls"
	"frost/builder/utils"
)

type postResult struct {
	html   string
	toc    []models.TOCEntry
	linked []string
	desc   string
	hit    bool
	err    error
}

type cardTask struct {
	route string // card output route
	title string
	desc  string
	date  string
	hash  string
}

// convertPosts runs every post through the markdown pipeline (or the
// cache), renders the post pages and queues stale social cards.
// Counters are settled here, after the workers join.
func (f *Freezer) convertPosts(ctx context.Context, lib *content.Library) error {
	if len(lib.Posts) == 0 {
		return nil
	}
	fmt.Printf("📝 Processing %d posts...\n", len(lib.Posts))

	results := make([]postResult, len(lib.Posts))
	numWorkers := utils.GetDefaultWorkerCount()
	sem := make(chan struct{}, numWorkers)
	var wg sync.WaitGroup

	for i := range lib.Posts {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = f.convertOne(&lib.Posts[i])
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	cardsEnabled := f.cards != nil && f.cards.Available()
	var cardTasks []cardTask

	for i := range lib.Posts {
		post := &lib.Posts[i]
		r := &results[i]
		if r.err != nil {
			f.warn.Warnf("Failed to convert %s: %v", post.Path, r.err)
			continue
		}
		if r.hit {
			f.met.CacheHits++
		} else {
			f.met.CacheMisses++
		}

		route := post.Meta.Route
		post.Meta.Link = f.res.Absolute(route)
		post.Meta.Description = r.desc

		image := ""
		if cardsEnabled {
			cardRoute := "/static/cards/" + post.Slug + ".webp"
			image = f.res.Absolute(cardRoute)

			hash, _ := utils.GetFrontmatterHash(post.Front)
			cardTasks = append(cardTasks, cardTask{
				route: cardRoute,
				title: post.Meta.Title,
				desc:  r.desc,
				date:  formatDate(post),
				hash:  hash,
			})
		}
		if img := utils.GetString(post.Front, "image"); img != "" {
			image = f.res.Absolute(img)
		}

		data := models.PageData{
			Title:       post.Meta.Title,
			Description: r.desc,
			Route:       route,
			Permalink:   post.Meta.Link,
			Content:     template.HTML(r.html),
			Meta:        post.Front,
			Date:        post.Meta.DateObj,
			TOC:         r.toc,
			HasMath:     post.Meta.HasMath,
			Image:       image,
			URLs:        f.res.At(route),
			Freeze:      f.fcfg.Options(),
			Config:      f.cfg,
		}
		f.freezeRoute(route, func(p string) error { return f.rnd.RenderPage(p, data) })
		f.met.PostsRendered++
		f.recordLinks(route, r.linked)
	}

	if len(cardTasks) > 0 {
		f.generateCards(cardTasks)
	}
	return nil
}

// convertOne parses one post or serves it from the cache. The body
// hash decides: a matching hash means templates may have changed but
// the markdown output has not.
func (f *Freezer) convertOne(post *content.Post) postResult {
	bodyHash := cache.HashContent(post.Source)

	if cached, err := f.cache.GetPageByPath(post.Path); err == nil && cached != nil && cached.BodyHash == bodyHash {
		if html, err := f.cache.GetHTMLContent(cached); err == nil {
			return postResult{
				html:   string(html),
				toc:    cached.TOC,
				linked: cached.LinkedRoutes,
				desc:   cached.Description,
				hit:    true,
			}
		}
	}

	pc := gparser.NewContext()
	pc.Set(mdParser.ContextKeyRoute, post.Meta.Route)

	doc := f.md.Parser().Parse(text.NewReader(post.Source), gparser.WithContext(pc))

	buf := utils.SharedBufferPool.Get()
	defer utils.SharedBufferPool.Put(buf)
	if err := f.md.Renderer().Render(buf, post.Source, doc); err != nil {
		return postResult{err: err}
	}
	html := buf.String()

	if pairs := mdParser.GetD2SVGPairSlice(pc); pairs != nil {
		html = mdParser.ReplaceD2Blocks(html, pairs)
	}
	if f.cfg.CompressImages {
		html = utils.ReplaceToWebP(html)
	}

	desc := post.Meta.Description
	if desc == "" {
		desc = autoDescription(mdParser.ExtractPlainText(doc, post.Source))
	}

	r := postResult{
		html:   html,
		toc:    mdParser.GetTOC(pc),
		linked: mdParser.GetLinkedRoutes(pc),
		desc:   desc,
	}

	var modTime int64
	if info, err := f.SourceFs.Stat(post.Path); err == nil {
		modTime = info.ModTime().Unix()
	}
	page := &cache.PageMeta{
		PageID:       cache.GeneratePageID(post.Path),
		Path:         post.Path,
		ModTime:      modTime,
		BodyHash:     bodyHash,
		Title:        post.Meta.Title,
		Date:         post.Meta.DateObj,
		Tags:         post.Meta.Tags,
		ReadingTime:  post.Meta.ReadingTime,
		Description:  desc,
		Route:        post.Meta.Route,
		Draft:        post.Meta.Draft,
		HasMath:      post.Meta.HasMath,
		Meta:         post.Front,
		TOC:          r.toc,
		LinkedRoutes: r.linked,
	}
	if err := f.cache.StoreHTMLForPage(page, []byte(html)); err == nil {
		if err := f.cache.PutPage(page); err != nil {
			f.warn.Warnf("Page not cached: %s: %v", post.Path, err)
		}
	} else {
		f.warn.Warnf("Page not cached: %s: %v", post.Path, err)
	}

	return r
}

// generateCards renders the queued social cards in parallel. A card
// whose frontmatter hash is unchanged and whose file survives on disk
// is only re-marked as frozen.
func (f *Freezer) generateCards(tasks []cardTask) {
	fresh := make([]cardTask, 0, len(tasks))
	for _, t := range tasks {
		rel := urls.File(t.route)
		cached, _ := f.cache.GetCardHash(t.route)
		if cached == t.hash && f.onDisk(rel) {
			f.markFrozen(rel)
			continue
		}
		fresh = append(fresh, t)
	}
	if len(fresh) == 0 {
		return
	}

	fmt.Printf("🖼️  Generating %d social cards...\n", len(fresh))
	sem := make(chan struct{}, utils.GetDefaultWorkerCount())
	var wg sync.WaitGroup
	for _, t := range fresh {
		wg.Add(1)
		sem <- struct{}{}
		go func(t cardTask) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := f.cards.Render(f.DestFs, f.destPath(t.route), t.title, t.desc, t.date); err != nil {
				f.warn.Warnf("Failed to generate card for %s: %v", t.route, err)
				return
			}
			f.markFrozen(urls.File(t.route))
			if err := f.cache.SetCardHash(t.route, t.hash); err != nil {
				f.warn.Warnf("Card hash not cached for %s: %v", t.route, err)
			}
		}(t)
	}
	wg.Wait()
}

// onDisk reports whether a destination-relative file already exists
// from an earlier freeze.
func (f *Freezer) onDisk(rel string) bool {
	_, err := os.Stat(filepath.Join(f.destRoot, filepath.FromSlash(rel)))
	return err == nil
}

func formatDate(post *content.Post) string {
	if post.Meta.DateObj.IsZero() {
		return ""
	}
	return post.Meta.DateObj.Format("Jan 2, 2006")
}

// autoDescription derives a meta description from the first sentences
// of the body text.
func autoDescription(plain string) string {
	plain = strings.Join(strings.Fields(plain), " ")
	if len(plain) <= 160 {
		return plain
	}
	cut := plain[:160]
	if i := strings.LastIndex(cut, " "); i > 80 {
		cut = cut[:i]
	}
	return cut + "…"
}
