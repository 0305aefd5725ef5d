package pagination

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/anasaboreeda/anascode/internal/content"
)

// ArticleSorter orders article listings by a named field.
type ArticleSorter struct {
	less map[string]func(a, b content.Article) bool
}

// NewArticleSorter creates a sorter over the date, title and slug fields.
func NewArticleSorter() *ArticleSorter {
	return &ArticleSorter{
		less: map[string]func(a, b content.Article) bool{
			"date": func(a, b content.Article) bool {
				return a.Time().Before(b.Time())
			},
			"title": func(a, b content.Article) bool {
				return strings.ToLower(a.Title) < strings.ToLower(b.Title)
			},
			"slug": func(a, b content.Article) bool {
				return a.Slug < b.Slug
			},
		},
	}
}

// IsValidField checks if the field is valid for sorting.
func (s *ArticleSorter) IsValidField(field string) bool {
	_, ok := s.less[field]
	return ok
}

// ValidFields returns the sortable field names in alphabetical order.
func (s *ArticleSorter) ValidFields() []string {
	fields := make([]string, 0, len(s.less))
	for field := range s.less {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Sort returns a sorted copy of articles. The sort is stable so equal keys
// keep their listing order.
func (s *ArticleSorter) Sort(articles []content.Article, field, order string) ([]content.Article, error) {
	less, ok := s.less[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.ValidFields(), ", "))
	}

	sorted := slices.Clone(articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOrderDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted, nil
}
