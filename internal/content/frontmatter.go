package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the canonical article date format.
const DateLayout = "2006-01-02"

const frontmatterDelimiter = "---"

// ErrInvalidFrontmatter is returned when a content file has no frontmatter
// block, the block is not valid YAML, or a required field is missing.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

var utf8BOM = []byte("\xef\xbb\xbf")

// Frontmatter is the metadata block at the top of an article source file.
type Frontmatter struct {
	Title   string   `yaml:"title"   json:"title"`
	Date    string   `yaml:"date"    json:"date"`
	Summary string   `yaml:"summary" json:"summary"`
	Tags    []string `yaml:"tags"    json:"tags"`

	// Source names the publication an imported article came from (e.g. "medium").
	Source       string `yaml:"source,omitempty"       json:"source,omitempty"`
	CanonicalURL string `yaml:"canonicalUrl,omitempty" json:"canonicalUrl,omitempty"`

	// Published is nil when the field is absent, which counts as published.
	Published *bool `yaml:"published,omitempty" json:"published,omitempty"`
}

// IsPublished reports whether the article should be listed in production.
func (f Frontmatter) IsPublished() bool {
	return f.Published == nil || *f.Published
}

// Time returns the article date as midnight UTC.
func (f Frontmatter) Time() time.Time {
	t, _ := time.Parse(DateLayout, f.Date)
	return t
}

// Validate checks required fields and normalizes Date to DateLayout and Tags
// to a non-nil slice.
func (f *Frontmatter) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidFrontmatter)
	}
	if strings.TrimSpace(f.Summary) == "" {
		return fmt.Errorf("%w: summary is required", ErrInvalidFrontmatter)
	}

	date, err := parseDate(f.Date)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFrontmatter, err)
	}
	f.Date = date.Format(DateLayout)

	if f.Tags == nil {
		f.Tags = []string{}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not yyyy-mm-dd or RFC 3339", raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Parse splits src into its frontmatter and body, decodes the frontmatter
// and validates it.
func Parse(src []byte) (Frontmatter, string, error) {
	var fm Frontmatter

	front, body, err := splitFrontmatter(src)
	if err != nil {
		return fm, "", err
	}

	if err = yaml.Unmarshal(front, &fm); err != nil {
		return fm, "", fmt.Errorf("%w: %w", ErrInvalidFrontmatter, err)
	}
	if err = fm.Validate(); err != nil {
		return fm, "", err
	}
	return fm, string(body), nil
}

// Render writes fm and body back out in source-file form.
func Render(fm Frontmatter, body string) ([]byte, error) {
	front, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")
	buf.Write(front)
	buf.WriteString(frontmatterDelimiter + "\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// splitFrontmatter returns the bytes between the opening and closing
// delimiter lines and everything after the closing line.
func splitFrontmatter(src []byte) ([]byte, []byte, error) {
	src = bytes.TrimPrefix(src, utf8BOM)

	first, rest, found := bytes.Cut(src, []byte("\n"))
	if !isDelimiter(first) {
		return nil, nil, fmt.Errorf("%w: missing opening %q", ErrInvalidFrontmatter, frontmatterDelimiter)
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: unterminated block", ErrInvalidFrontmatter)
	}

	block := rest
	offset := 0
	for {
		line, next, more := bytes.Cut(rest, []byte("\n"))
		if isDelimiter(line) {
			return block[:offset], next, nil
		}
		if !more {
			return nil, nil, fmt.Errorf("%w: unterminated block", ErrInvalidFrontmatter)
		}
		offset += len(line) + 1
		rest = next
	}
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == frontmatterDelimiter
}
