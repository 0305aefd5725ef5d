// Package importer converts articles published on Medium into MDX sources
// for the content directory. It reads Medium's HTML export as well as the
// public RSS feed of an account.
package importer

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/anasaboreeda/anascode/internal/content"
)

// SourceMedium is written to the source field of imported articles.
const SourceMedium = "Medium"

const (
	maxTags         = 5
	maxSlugLength   = 60
	maxSummaryRunes = 160
	untitled        = "Untitled"
)

// ErrMissingDate is returned for posts whose publication date is unknown.
// Medium exports comments and responses as posts without a dated file name.
var ErrMissingDate = errors.New("no publication date")

// knownTags are matched against the article text, in this order, to tag
// imported articles. Hyphens match a space in the text.
var knownTags = []string{
	"java", "spring-boot", "microservices", "security", "aws", "database",
	"algorithms", "data-structures", "architecture", "performance",
	"cloud", "devops", "testing", "best-practices",
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Article is an imported post ready to be written as MDX.
type Article struct {
	Slug        string
	Frontmatter content.Frontmatter
	Body        string

	// Images are the remote image URLs referenced by the body.
	Images []string

	// Origin is the export file or feed item link the article came from.
	Origin string
}

// Slugify turns a title into a URL slug: accents are stripped, runs of
// anything outside [a-z0-9] become a single '-', and the result is cut to 60
// characters.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, title)
	if err != nil {
		s = title
	}

	s = strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}

// DetectTags returns up to five known topics mentioned in text.
func DetectTags(text string) []string {
	lower := strings.ToLower(text)
	tags := make([]string, 0, maxTags)
	for _, tag := range knownTags {
		if strings.Contains(lower, strings.Replace(tag, "-", " ", 1)) {
			tags = append(tags, tag)
			if len(tags) == maxTags {
				break
			}
		}
	}
	return tags
}

// Excerpt shortens text to a one-line summary of at most 160 characters,
// cutting at a word boundary.
func Excerpt(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(text) <= maxSummaryRunes {
		return text
	}

	cut := string([]rune(text)[:maxSummaryRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

func newArticle(fm content.Frontmatter, body string, images []string, origin string) (*Article, error) {
	if fm.Title == "" {
		fm.Title = untitled
	}
	if fm.Summary == "" {
		fm.Summary = fm.Title
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if err := fm.Validate(); err != nil {
		return nil, err
	}

	slug := Slugify(fm.Title)
	if slug == "" {
		slug = "article-" + fm.Date
	}

	return &Article{
		Slug:        slug,
		Frontmatter: fm,
		Body:        body,
		Images:      images,
		Origin:      origin,
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}
