package generators

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"frost/builder/models"
	"frost/builder/urls"
)

// GenerateSitemap writes sitemap.xml with the home page, every post and
// every tag listing as full permalinks.
func GenerateSitemap(destFs afero.Fs, res *urls.Resolver, posts []models.PostMetadata, tags []models.TagData) error {
	entries := []models.Url{
		{Loc: res.Absolute("/"), LastMod: time.Now().Format("2006-01-02")},
	}
	for _, p := range posts {
		entries = append(entries, models.Url{
			Loc:     p.Link,
			LastMod: p.DateObj.Format("2006-01-02"),
		})
	}
	for _, t := range tags {
		entries = append(entries, models.Url{Loc: res.Absolute(t.Route)})
	}

	output, err := xml.MarshalIndent(models.UrlSet{Urls: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sitemap: %w", err)
	}
	if err := afero.WriteFile(destFs, "sitemap.xml", []byte(xml.Header+string(output)), 0644); err != nil {
		return fmt.Errorf("write sitemap.xml: %w", err)
	}
	return nil
}
