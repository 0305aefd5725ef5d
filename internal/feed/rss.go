// Package feed renders the article list as an RSS 2.0 document.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/seo"
)

// DefaultLanguage is used when the site config leaves the language empty.
const DefaultLanguage = "en"

// Path is where the feed is served relative to the site root.
const Path = "/rss"

// New builds the feed model for articles. now becomes the feed's build date.
func New(site config.SiteConfig, articles []content.Article, now time.Time) *feeds.Feed {
	f := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: seo.PageURL(site.URL, "/")},
		Description: site.Description,
		Created:     now,
		Updated:     now,
	}
	if site.Author.Name != "" {
		f.Author = &feeds.Author{Name: site.Author.Name, Email: site.Author.Email}
	}

	f.Items = make([]*feeds.Item, 0, len(articles))
	for _, a := range articles {
		link := seo.ArticleURL(site.URL, a)
		f.Items = append(f.Items, &feeds.Item{
			Title:       a.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: a.Summary,
			Created:     a.Time(),
		})
	}
	return f
}

// BuildRSS renders articles as RSS 2.0 XML.
func BuildRSS(site config.SiteConfig, articles []content.Article, now time.Time) (string, error) {
	rss := (&feeds.Rss{Feed: New(site, articles, now)}).RssFeed()

	rss.Language = site.Language
	if rss.Language == "" {
		rss.Language = DefaultLanguage
	}
	for i, a := range articles {
		if len(a.Tags) > 0 {
			rss.Items[i].Category = strings.Join(a.Tags, ", ")
		}
	}

	out, err := feeds.ToXML(rss)
	if err != nil {
		return "", fmt.Errorf("rendering rss: %w", err)
	}
	return out, nil
}
