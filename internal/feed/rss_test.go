package feed_test

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/config"
	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/feed"
)

func articles() []content.Article {
	return []content.Article{
		{
			Slug: "newest",
			Frontmatter: content.Frontmatter{
				Title:   "Newest & best",
				Date:    "2024-06-01",
				Summary: "Latest post",
				Tags:    []string{"go", "testing"},
			},
		},
		{
			Slug: "imported",
			Frontmatter: content.Frontmatter{
				Title:        "From Medium",
				Date:         "2023-01-15",
				Summary:      "Cross-posted",
				Tags:         []string{},
				CanonicalURL: "https://medium.com/@anas/imported",
			},
		},
	}
}

func TestBuildRSS(t *testing.T) {
	site := config.New().Site
	site.URL = "https://example.com"
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	xml, err := feed.BuildRSS(site, articles(), now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, `version="2.0"`)

	parsed, err := gofeed.NewParser().ParseString(xml)
	require.NoError(t, err)

	assert.Equal(t, site.Title, parsed.Title)
	assert.Equal(t, "https://example.com", parsed.Link)
	assert.Equal(t, "en", parsed.Language)
	require.NotNil(t, parsed.UpdatedParsed)
	assert.True(t, now.Equal(*parsed.UpdatedParsed))

	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, "Newest & best", first.Title)
	assert.Equal(t, "https://example.com/articles/newest", first.Link)
	assert.Equal(t, "https://example.com/articles/newest", first.GUID)
	assert.Equal(t, "Latest post", first.Description)
	assert.Equal(t, []string{"go, testing"}, first.Categories)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Equal(*first.PublishedParsed))

	second := parsed.Items[1]
	assert.Equal(t, "https://medium.com/@anas/imported", second.Link)
	assert.Equal(t, "https://medium.com/@anas/imported", second.GUID)
	assert.Empty(t, second.Categories)
}

func TestBuildRSS_Empty(t *testing.T) {
	site := config.New().Site
	site.Language = "nl"

	xml, err := feed.BuildRSS(site, nil, time.Now())
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(xml)
	require.NoError(t, err)
	assert.Empty(t, parsed.Items)
	assert.Equal(t, "nl", parsed.Language)
}
