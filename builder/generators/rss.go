// Package generators produces the auxiliary freeze outputs: the RSS
// feed, the sitemap and the social share cards.
package generators

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"frost/builder/models"
)

// GenerateRSS writes rss.xml to the freeze filesystem. Post links must
// already be full permalinks.
func GenerateRSS(destFs afero.Fs, siteTitle, siteLink, siteDescription string, posts []models.PostMetadata) error {
	var items []models.Item
	for _, p := range posts {
		items = append(items, models.Item{
			Title:       p.Title,
			Link:        p.Link,
			Description: p.Description,
			PubDate:     p.DateObj.Format(time.RFC1123),
			Guid:        p.Link,
		})
	}
	rss := models.Rss{
		Version: "2.0",
		Channel: models.Channel{
			Title:       siteTitle,
			Link:        siteLink,
			Description: siteDescription,
			Items:       items,
		},
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rss: %w", err)
	}
	if err := afero.WriteFile(destFs, "rss.xml", []byte(xml.Header+string(output)), 0644); err != nil {
		return fmt.Errorf("write rss.xml: %w", err)
	}
	return nil
}
