package sitemap_test

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/sitemap"
)

type parsedSet struct {
	XMLName xml.Name      `xml:"urlset"`
	URLs    []sitemap.URL `xml:"url"`
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 9, 1, 10, 30, 0, 0, time.UTC)
	articles := []content.Article{
		{Slug: "local", Frontmatter: content.Frontmatter{Date: "2024-08-01"}},
		{Slug: "elsewhere", Frontmatter: content.Frontmatter{Date: "2023-02-03", CanonicalURL: "https://medium.com/p/1"}},
	}

	data, err := sitemap.Build("https://example.com/", sitemap.DefaultPages(), articles, now)
	require.NoError(t, err)
	assert.Contains(t, string(data), `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)

	var set parsedSet
	require.NoError(t, xml.Unmarshal(data, &set))
	require.Len(t, set.URLs, 6)

	assert.Equal(t, sitemap.URL{
		Loc: "https://example.com", LastMod: "2024-09-01T10:30:00Z", ChangeFreq: "weekly", Priority: 1,
	}, set.URLs[0])
	assert.Equal(t, "https://example.com/articles", set.URLs[1].Loc)
	assert.InDelta(t, 0.8, set.URLs[1].Priority, 1e-9)
	assert.Equal(t, "monthly", set.URLs[3].ChangeFreq)
	assert.Equal(t, "https://example.com/about", set.URLs[3].Loc)

	assert.Equal(t, sitemap.URL{
		Loc: "https://example.com/articles/local", LastMod: "2024-08-01", ChangeFreq: "monthly", Priority: 0.7,
	}, set.URLs[4])
	assert.Equal(t, "https://medium.com/p/1", set.URLs[5].Loc)
	assert.Equal(t, "2023-02-03", set.URLs[5].LastMod)
}

func TestBuild_NoArticles(t *testing.T) {
	data, err := sitemap.Build("https://example.com", sitemap.DefaultPages(), nil, time.Now())
	require.NoError(t, err)

	var set parsedSet
	require.NoError(t, xml.Unmarshal(data, &set))
	assert.Len(t, set.URLs, len(sitemap.DefaultPages()))
}
