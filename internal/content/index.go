// Package content discovers article source files and turns them into
// date-ordered article records.
//
// An article lives either in a flat file (<dir>/<slug>.mdx) or in its own
// directory next to its assets (<dir>/<slug>/index.mdx). When both exist the
// directory wins. The index keeps no state between calls; every method reads
// the filesystem again.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultExtension is the source extension used when none is configured.
const DefaultExtension = ".mdx"

const (
	indexBaseName = "index"
	maxSlugLength = 200
)

// ErrInvalidSlug is returned by ValidateSlug.
var ErrInvalidSlug = errors.New("invalid slug")

// Document is a parsed article source file.
type Document struct {
	Slug        string
	Frontmatter Frontmatter
	Content     string

	// Path is the file the document was read from.
	Path string
}

// Article returns the listing record for d.
func (d *Document) Article() Article {
	return Article{Slug: d.Slug, Frontmatter: d.Frontmatter}
}

// Article is the metadata of one article without its body. It marshals to
// a flat JSON object with the slug next to the frontmatter fields.
type Article struct {
	Slug string `json:"slug"`
	Frontmatter
}

// Option configures an Index.
type Option func(*Index)

// WithExtensions sets the accepted source extensions in resolution order.
func WithExtensions(exts ...string) Option {
	return func(ix *Index) {
		if len(exts) > 0 {
			ix.extensions = exts
		}
	}
}

// WithProduction hides unpublished articles from Articles.
func WithProduction(production bool) Option {
	return func(ix *Index) {
		ix.production = production
	}
}

// WithLogger sets the logger used to report unreadable or malformed files.
func WithLogger(l zerolog.Logger) Option {
	return func(ix *Index) {
		ix.logger = l
	}
}

// Index reads articles from a content directory.
type Index struct {
	dir        string
	extensions []string
	production bool
	logger     zerolog.Logger
}

// NewIndex creates an index over dir. A missing dir is an empty index.
func NewIndex(dir string, opts ...Option) *Index {
	ix := &Index{
		dir:        dir,
		extensions: []string{DefaultExtension},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Dir returns the content directory.
func (ix *Index) Dir() string {
	return ix.dir
}

// Slugs lists every article in the content directory, flat and nested
// layouts combined, in directory-listing order without duplicates.
func (ix *Index) Slugs() []string {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ix.logger.Error().Err(err).Str("directory", ix.dir).Msg("failed to read content directory")
		}
		return []string{}
	}

	slugs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	add := func(slug string) {
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if ix.nestedPath(name) != "" {
				add(name)
			}
			continue
		}
		if ext := ix.matchExtension(name); ext != "" {
			add(strings.TrimSuffix(name, ext))
		}
	}
	return slugs
}

// Document resolves slug to a source file, preferring <slug>/index.<ext>
// over <slug>.<ext>, and parses it. The boolean is false if the slug is
// invalid or the file is missing, unreadable or malformed.
func (ix *Index) Document(slug string) (*Document, bool) {
	log := ix.logger.With().Str("slug", slug).Logger()

	if err := ValidateSlug(slug); err != nil {
		log.Warn().Err(err).Msg("rejected article lookup")
		return nil, false
	}

	path := ix.resolve(slug)
	if path == "" {
		log.Debug().Msg("article not found")
		return nil, false
	}

	src, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read article")
		return nil, false
	}

	fm, body, err := Parse(src)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("skipping article with malformed frontmatter")
		return nil, false
	}

	return &Document{
		Slug:        slug,
		Frontmatter: fm,
		Content:     body,
		Path:        path,
	}, true
}

// Articles returns every resolvable article sorted by date, newest first.
// Articles with equal dates keep their directory-listing order. In
// production mode unpublished articles are left out.
func (ix *Index) Articles() []Article {
	slugs := ix.Slugs()
	articles := make([]Article, 0, len(slugs))

	for _, slug := range slugs {
		doc, ok := ix.Document(slug)
		if !ok {
			continue
		}
		if ix.production && !doc.Frontmatter.IsPublished() {
			ix.logger.Debug().Str("slug", slug).Msg("hiding unpublished article")
			continue
		}
		articles = append(articles, doc.Article())
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Time().After(articles[j].Time())
	})
	return articles
}

func (ix *Index) resolve(slug string) string {
	if path := ix.nestedPath(slug); path != "" {
		return path
	}
	for _, ext := range ix.extensions {
		path := filepath.Join(ix.dir, slug+ext)
		if isRegularFile(path) {
			return path
		}
	}
	return ""
}

func (ix *Index) nestedPath(slug string) string {
	for _, ext := range ix.extensions {
		path := filepath.Join(ix.dir, slug, indexBaseName+ext)
		if isRegularFile(path) {
			return path
		}
	}
	return ""
}

func (ix *Index) matchExtension(name string) string {
	for _, ext := range ix.extensions {
		if strings.HasSuffix(name, ext) {
			return ext
		}
	}
	return ""
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ValidateSlug rejects slugs that could escape the content directory.
func ValidateSlug(slug string) error {
	switch {
	case slug == "":
		return fmt.Errorf("%w: slug is required", ErrInvalidSlug)
	case len(slug) > maxSlugLength:
		return fmt.Errorf("%w: slug too long (max %d chars)", ErrInvalidSlug, maxSlugLength)
	case strings.ContainsAny(slug, `/\`):
		return fmt.Errorf("%w: slug must not contain path separators", ErrInvalidSlug)
	case strings.Contains(slug, ".."):
		return fmt.Errorf("%w: slug must not contain '..'", ErrInvalidSlug)
	case slug[0] == '.':
		return fmt.Errorf("%w: slug must not start with '.'", ErrInvalidSlug)
	}
	return nil
}
