package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/logging"
)

const (
	defaultFeedTimeout = 30 * time.Second
	feedUserAgent      = "anascode-importer/1.0"
)

// FeedOption configures a FeedImporter.
type FeedOption func(*FeedImporter)

// WithFullText fetches the article page for items whose feed entry carries
// only a teaser, and extracts the body with a readability parser.
func WithFullText(enabled bool) FeedOption {
	return func(fi *FeedImporter) {
		fi.fullText = enabled
	}
}

// WithFeedLogger sets the importer's logger.
func WithFeedLogger(l zerolog.Logger) FeedOption {
	return func(fi *FeedImporter) {
		fi.logger = l
		fi.http.Logger = logging.RetryableHTTPLogger(l)
	}
}

// FeedImporter converts the items of a Medium RSS feed.
type FeedImporter struct {
	parser   *gofeed.Parser
	http     *retryablehttp.Client
	fullText bool
	logger   zerolog.Logger
}

// NewFeedImporter creates an importer that fetches over a retrying HTTP client.
func NewFeedImporter(opts ...FeedOption) *FeedImporter {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = defaultFeedTimeout
	rc.Logger = logging.RetryableHTTPLogger(zerolog.Nop())

	parser := gofeed.NewParser()
	parser.UserAgent = feedUserAgent

	fi := &FeedImporter{parser: parser, http: rc, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(fi)
	}
	fi.parser.Client = fi.http.StandardClient()
	return fi
}

// Parse reads the feed at source, which is either an http(s) URL or a local
// file, and converts its items. Undated items are skipped.
func (fi *FeedImporter) Parse(ctx context.Context, source string) ([]*Article, error) {
	feed, err := fi.load(ctx, source)
	if err != nil {
		return nil, err
	}

	articles := make([]*Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		article, itemErr := fi.convert(ctx, item)
		if itemErr != nil {
			fi.logger.Warn().Err(itemErr).Str("title", item.Title).Msg("skipping feed item")
			continue
		}
		articles = append(articles, article)
	}

	fi.logger.Info().
		Str("feed", feed.Title).
		Int("items", len(feed.Items)).
		Int("converted", len(articles)).
		Msg("medium feed parsed")
	return articles, nil
}

func (fi *FeedImporter) load(ctx context.Context, source string) (*gofeed.Feed, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		feed, err := fi.parser.ParseURLWithContext(source, ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching feed: %w", err)
		}
		return feed, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	defer f.Close()

	feed, err := fi.parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return feed, nil
}

func (fi *FeedImporter) convert(ctx context.Context, item *gofeed.Item) (*Article, error) {
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published == nil {
		return nil, ErrMissingDate
	}

	body := item.Content
	if body == "" && fi.fullText && item.Link != "" {
		full, err := fi.fetchReadable(ctx, item.Link)
		if err != nil {
			fi.logger.Warn().Err(err).Str("link", item.Link).Msg("full text unavailable, using feed summary")
		} else {
			body = full
		}
	}
	if body == "" {
		body = item.Description
	}

	markdown, err := HTMLToMarkdown(body)
	if err != nil {
		return nil, err
	}

	tags := categoryTags(item.Categories)
	if len(tags) == 0 {
		tags = DetectTags(markdown)
	}

	fm := content.Frontmatter{
		Title:        strings.TrimSpace(item.Title),
		Date:         published.UTC().Format(content.DateLayout),
		Summary:      Excerpt(firstParagraph(markdown)),
		Tags:         tags,
		Source:       SourceMedium,
		CanonicalURL: stripQuery(item.Link),
		Published:    boolPtr(true),
	}
	return newArticle(fm, EscapeMDX(markdown), nil, item.Link)
}

func (fi *FeedImporter) fetchReadable(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing link: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := fi.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("extracting article: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", errors.New("no readable content")
	}
	return article.Content, nil
}

// categoryTags turns feed categories into slug-style tags, at most five.
func categoryTags(categories []string) []string {
	tags := make([]string, 0, maxTags)
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		tag := Slugify(c)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// stripQuery drops tracking parameters such as ?source=rss from a link.
func stripQuery(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
