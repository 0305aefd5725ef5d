// Package sitemap renders sitemap.xml for the static pages and articles.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/seo"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies used by the site.
const (
	Weekly  = "weekly"
	Monthly = "monthly"
)

const articlePriority = 0.7

// Page is a static page listed in the sitemap.
type Page struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// DefaultPages are the site's static pages in listing order.
func DefaultPages() []Page {
	return []Page{
		{Path: "/", ChangeFreq: Weekly, Priority: 1.0},
		{Path: "/articles", ChangeFreq: Weekly, Priority: 0.8},
		{Path: "/links", ChangeFreq: Monthly, Priority: 0.5},
		{Path: "/about", ChangeFreq: Monthly, Priority: 0.5},
	}
}

// URL is one <url> element.
type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Entries lists the static pages, last modified at now, followed by one entry
// per article, last modified at its date.
func Entries(baseURL string, pages []Page, articles []content.Article, now time.Time) []URL {
	urls := make([]URL, 0, len(pages)+len(articles))
	stamp := now.UTC().Format(time.RFC3339)

	for _, p := range pages {
		urls = append(urls, URL{
			Loc:        seo.PageURL(baseURL, p.Path),
			LastMod:    stamp,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}
	for _, a := range articles {
		urls = append(urls, URL{
			Loc:        seo.ArticleURL(baseURL, a),
			LastMod:    a.Date,
			ChangeFreq: Monthly,
			Priority:   articlePriority,
		})
	}
	return urls
}

// Build renders the sitemap document.
func Build(baseURL string, pages []Page, articles []content.Article, now time.Time) ([]byte, error) {
	set := urlSet{Xmlns: xmlns, URLs: Entries(baseURL, pages, articles, now)}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encoding sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
