package seo_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/seo"
)

func testArticle() content.Article {
	return content.Article{
		Slug: "jvm-tuning",
		Frontmatter: content.Frontmatter{
			Title:   "JVM <Tuning>",
			Date:    "2024-03-10",
			Summary: "Heap sizing in practice",
			Tags:    []string{"java", "performance"},
		},
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://example.com", seo.PageURL("https://example.com/", "/"))
	assert.Equal(t, "https://example.com", seo.PageURL("https://example.com", ""))
	assert.Equal(t, "https://example.com/about", seo.PageURL("https://example.com/", "about"))
	assert.Equal(t, "https://example.com/articles/x", seo.PageURL("https://example.com", "/articles/x"))
}

func TestArticleURL(t *testing.T) {
	a := testArticle()
	assert.Equal(t, "https://example.com/articles/jvm-tuning", seo.ArticleURL("https://example.com", a))

	a.CanonicalURL = "https://medium.com/@anas/jvm"
	assert.Equal(t, "https://medium.com/@anas/jvm", seo.ArticleURL("https://example.com", a))
}

func TestTitle(t *testing.T) {
	site := config.New().Site
	assert.Equal(t, site.Title, seo.Title(site, ""))
	assert.Equal(t, "Links | "+site.Title, seo.Title(site, "Links"))
}

func TestArticleJSONLD(t *testing.T) {
	site := config.New().Site
	site.URL = "https://example.com"
	a := testArticle()
	a.CanonicalURL = "https://medium.com/@anas/jvm"

	data, err := seo.ArticleJSONLD(site, a)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<Tuning>", "markup is escaped for inline script use")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "https://schema.org", doc["@context"])
	assert.Equal(t, "Article", doc["@type"])
	assert.Equal(t, "JVM <Tuning>", doc["headline"])
	assert.Equal(t, "2024-03-10", doc["datePublished"])
	assert.Equal(t, "java, performance", doc["keywords"])
	assert.Equal(t, "https://medium.com/@anas/jvm", doc["url"])
	assert.Equal(t, "https://example.com/articles/jvm-tuning", doc["mainEntityOfPage"])

	author, ok := doc["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Person", author["@type"])
	assert.Equal(t, site.Author.Name, author["name"])
}
