package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/anasaboreeda/anascode/internal/content"
)

const (
	exportExtension = ".html"
	draftPrefix     = "draft_"

	selectorTitle     = "h1.p-name"
	selectorPageTitle = "title"
	selectorSubtitle  = `section[data-field="subtitle"]`
	selectorCanonical = "a.p-canonical"
	selectorBody      = `section[data-field="body"]`
	selectorHidden    = `header, section[data-field="subtitle"], section[data-field="description"]`
)

// exportDate matches the date prefix of an export file name, for example
// "2021-03-14_Some-Title-1a2b3c.html". Drafts carry an extra "draft_".
var exportDate = regexp.MustCompile(`^(?:draft_)?(\d{4})-(\d{2})-(\d{2})_`)

var mediumBase = &url.URL{Scheme: "https", Host: "medium.com"}

// ParseExport converts one post of a Medium HTML export. filename is the
// base name of the export file; it carries the publication date and the
// draft marker.
func ParseExport(filename string, r io.Reader) (*Article, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	base := filepath.Base(filename)
	m := exportDate.FindStringSubmatch(base)
	if m == nil {
		return nil, fmt.Errorf("%s: %w", base, ErrMissingDate)
	}

	canonical, _ := doc.Find(selectorCanonical).First().Attr("href")
	fm := exportFrontmatter(doc, m[1]+"-"+m[2]+"-"+m[3], canonical)
	fm.Published = boolPtr(!strings.HasPrefix(base, draftPrefix))

	body := doc.Find(selectorBody).First()
	var markdown string
	var images []string
	var bodyText string

	if body.Length() > 0 {
		bodyText = body.Text()
		body.Find(selectorHidden).Remove()
		markdown = ToMarkdown(body)
		images = imageSources(body)
	} else {
		markdown, bodyText, images, err = readableBody(raw, canonical)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", base, err)
		}
	}

	fm.Tags = DetectTags(bodyText)
	if fm.Summary == "" {
		fm.Summary = Excerpt(firstParagraph(markdown))
	}

	return newArticle(fm, EscapeMDX(markdown), images, filename)
}

func exportFrontmatter(doc *goquery.Document, date, canonical string) content.Frontmatter {
	title := strings.TrimSpace(doc.Find(selectorTitle).First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(selectorPageTitle).First().Text())
	}
	return content.Frontmatter{
		Title:        title,
		Date:         date,
		Summary:      strings.TrimSpace(doc.Find(selectorSubtitle).First().Text()),
		Source:       SourceMedium,
		CanonicalURL: canonical,
	}
}

// readableBody extracts the main content of a page that lacks Medium's body
// section, such as a post saved from the browser.
func readableBody(raw []byte, pageURL string) (string, string, []string, error) {
	base := mediumBase
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(bytes.NewReader(raw), base)
	if err != nil {
		return "", "", nil, fmt.Errorf("extracting readable content: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", "", nil, errors.New("no article body found")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", "", nil, fmt.Errorf("parsing readable content: %w", err)
	}
	body := doc.Find("body")
	return ToMarkdown(body), article.TextContent, imageSources(body), nil
}

func imageSources(sel *goquery.Selection) []string {
	var images []string
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if src == "" {
			src, _ = img.Attr("data-src")
		}
		if strings.HasPrefix(src, "http") {
			images = append(images, src)
		}
	})
	return images
}

// firstParagraph returns the first Markdown block that is plain prose.
func firstParagraph(md string) string {
	for _, block := range strings.Split(md, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.ContainsAny(block[:1], "#>-!`*|") || startsWithDigitDot(block) {
			continue
		}
		return block
	}
	return ""
}

func startsWithDigitDot(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && s[i] == '.'
}

// ExportResult collects the outcome of converting an export directory.
type ExportResult struct {
	Articles []*Article
	Skipped  map[string]error
}

// ParseExportDir converts every .html post in dir. Posts that fail to parse
// or have no date are reported in Skipped and do not stop the run.
func ParseExportDir(dir string, logger zerolog.Logger) (*ExportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading export directory: %w", err)
	}

	result := &ExportResult{Skipped: make(map[string]error)}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != exportExtension {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		article, parseErr := parseExportFile(path)
		if parseErr != nil {
			if errors.Is(parseErr, ErrMissingDate) {
				logger.Debug().Str("file", entry.Name()).Msg("skipping undated post")
			} else {
				logger.Warn().Err(parseErr).Str("file", entry.Name()).Msg("skipping post")
			}
			result.Skipped[entry.Name()] = parseErr
			continue
		}

		for _, img := range article.Images {
			logger.Debug().Str("slug", article.Slug).Str("image", img).Msg("remote image kept")
		}
		result.Articles = append(result.Articles, article)
	}

	logger.Info().
		Int("converted", len(result.Articles)).
		Int("skipped", len(result.Skipped)).
		Msg("medium export parsed")
	return result, nil
}

func parseExportFile(path string) (*Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseExport(path, f)
}
