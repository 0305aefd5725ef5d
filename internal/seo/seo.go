// Package seo builds page URLs, titles and schema.org structured data for
// articles.
package seo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
)

const (
	schemaContext = "https://schema.org"
	articlesPath  = "/articles/"
)

// PageURL joins the site URL and an absolute path.
func PageURL(siteURL, path string) string {
	base := strings.TrimRight(siteURL, "/")
	if path == "" || path == "/" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// ArticleURL is the public URL of an article: its canonical URL when it was
// first published elsewhere, otherwise the on-site article page.
func ArticleURL(siteURL string, a content.Article) string {
	if a.CanonicalURL != "" {
		return a.CanonicalURL
	}
	return PageURL(siteURL, articlesPath+a.Slug)
}

// Title renders a page title as "<title> | <site>", or the bare site title
// when title is empty.
func Title(site config.SiteConfig, title string) string {
	if strings.TrimSpace(title) == "" {
		return site.Title
	}
	return fmt.Sprintf("%s | %s", title, site.Title)
}

// Person is a schema.org Person.
type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ArticleSchema is a schema.org Article.
type ArticleSchema struct {
	Context          string `json:"@context"`
	Type             string `json:"@type"`
	Headline         string `json:"headline"`
	Description      string `json:"description"`
	DatePublished    string `json:"datePublished"`
	Author           Person `json:"author"`
	URL              string `json:"url"`
	MainEntityOfPage string `json:"mainEntityOfPage"`
	Keywords         string `json:"keywords,omitempty"`
}

// NewArticleSchema describes a as a schema.org Article authored by the site owner.
func NewArticleSchema(site config.SiteConfig, a content.Article) ArticleSchema {
	pageURL := PageURL(site.URL, articlesPath+a.Slug)
	return ArticleSchema{
		Context:       schemaContext,
		Type:          "Article",
		Headline:      a.Title,
		Description:   a.Summary,
		DatePublished: a.Date,
		Author: Person{
			Type: "Person",
			Name: site.Author.Name,
			URL:  site.URL,
		},
		URL:              ArticleURL(site.URL, a),
		MainEntityOfPage: pageURL,
		Keywords:         strings.Join(a.Tags, ", "),
	}
}

// ArticleJSONLD returns the JSON-LD document for a. The encoding escapes
// '<' and '>' so it can be inlined in a script element.
func ArticleJSONLD(site config.SiteConfig, a content.Article) ([]byte, error) {
	data, err := json.Marshal(NewArticleSchema(site, a))
	if err != nil {
		return nil, fmt.Errorf("marshaling article JSON-LD: %w", err)
	}
	return data, nil
}
