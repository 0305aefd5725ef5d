package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/anasaboreeda/anascode/internal/content"
)

const indexFile = "index.mdx"

// WriteStatus reports what Write did with an article.
type WriteStatus int

// Write outcomes.
const (
	StatusWritten WriteStatus = iota
	StatusSkipped
	StatusOverwritten
)

func (s WriteStatus) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusOverwritten:
		return "overwritten"
	default:
		return "written"
	}
}

// Writer stores imported articles as <dir>/<slug>/index.mdx.
type Writer struct {
	dir    string
	force  bool
	logger zerolog.Logger
}

// NewWriter creates a writer into the content directory dir. Existing
// articles are left alone unless force is set.
func NewWriter(dir string, force bool, logger zerolog.Logger) *Writer {
	return &Writer{dir: dir, force: force, logger: logger}
}

// Write renders a and writes it. An article already present under the same
// slug, in either layout, is skipped unless the writer was created with force.
func (w *Writer) Write(a *Article) (string, WriteStatus, error) {
	if err := content.ValidateSlug(a.Slug); err != nil {
		return "", StatusSkipped, err
	}

	articleDir := filepath.Join(w.dir, a.Slug)
	path := filepath.Join(articleDir, indexFile)

	exists := fileExists(path) || fileExists(filepath.Join(w.dir, a.Slug+filepath.Ext(indexFile)))
	if exists && !w.force {
		w.logger.Info().Str("slug", a.Slug).Msg("article exists, skipping")
		return path, StatusSkipped, nil
	}

	data, err := content.Render(a.Frontmatter, a.Body)
	if err != nil {
		return "", StatusSkipped, err
	}

	if err = os.MkdirAll(articleDir, 0750); err != nil {
		return "", StatusSkipped, fmt.Errorf("creating article directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0600); err != nil {
		return "", StatusSkipped, fmt.Errorf("writing article: %w", err)
	}

	status := StatusWritten
	if exists {
		status = StatusOverwritten
	}
	w.logger.Info().Str("slug", a.Slug).Str("path", path).Stringer("status", status).Msg("article imported")
	return path, status, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
