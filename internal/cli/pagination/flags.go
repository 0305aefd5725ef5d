package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Validation limits and defaults.
const (
	MaxLimit         = 10000
	MaxPageSize      = 1000
	DefaultSortOrder = SortOrderAsc
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Validation errors.
var (
	ErrInvalidLimit         = fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	ErrInvalidPageSize      = fmt.Errorf("page-size must be between 1 and %d", MaxPageSize)
	ErrInvalidOffset        = errors.New("offset must be non-negative")
	ErrInvalidPage          = errors.New("page must be >= 1")
	ErrMixedPaginationModes = errors.New("cannot use both offset-based (--offset) and page-based (--page) pagination")
	ErrPageSizeWithoutPage  = errors.New("--page-size requires --page to be set")
	ErrInvalidSortFormat    = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'date:desc')")
	ErrInvalidSortOrder     = errors.New("sort order must be 'asc' or 'desc'")
	ErrEmptySortField       = errors.New("sort field cannot be empty")
	ErrInvalidSortField     = errors.New("invalid sort field")
)

// Params holds the pagination flags of a command. Two modes are supported
// and are mutually exclusive:
//   - Offset-based: --limit and --offset
//   - Page-based: --page and --page-size
//
// A zero Limit in offset mode means no limit.
type Params struct {
	Limit    int
	Offset   int
	Page     int
	PageSize int
	Sort     string
}

// AddFlags registers the pagination flags on cmd, bound to p.
func (p *Params) AddFlags(cmd *cobra.Command, sortHelp string) {
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum number of results (0 for all)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "number of results to skip")
	cmd.Flags().IntVar(&p.Page, "page", 0, "1-based page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "results per page (requires --page)")
	cmd.Flags().StringVar(&p.Sort, "sort", "", sortHelp)
}

// Validate checks the bounds of each flag and that the modes are not mixed.
func (p Params) Validate() error {
	switch {
	case p.Limit < 0 || p.Limit > MaxLimit:
		return ErrInvalidLimit
	case p.Offset < 0:
		return ErrInvalidOffset
	case p.Page < 0:
		return ErrInvalidPage
	case p.PageSize < 0 || p.PageSize > MaxPageSize:
		return ErrInvalidPageSize
	case p.Page > 0 && p.Offset > 0:
		return ErrMixedPaginationModes
	case p.Page == 0 && p.PageSize > 0:
		return ErrPageSizeWithoutPage
	case p.Page > 0 && p.PageSize == 0:
		return fmt.Errorf("%w: --page requires --page-size", ErrInvalidPageSize)
	}
	return nil
}

// IsPageBased reports whether page-based pagination is active.
func (p Params) IsPageBased() bool {
	return p.Page > 0
}

// IsEnabled reports whether any pagination flag is set.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0 || p.Page > 0
}

// OffsetLimit returns the effective offset and limit for either mode.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func (p Params) OffsetLimit() (offset, limit int) {
	if p.IsPageBased() {
		return (p.Page - 1) * p.PageSize, p.PageSize
	}
	return p.Offset, p.Limit
}

// Apply returns the window of items selected by p. An offset past the end
// yields an empty slice.
func Apply[T any](p Params, items []T) []T {
	offset, limit := p.OffsetLimit()
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses "field" or "field:order". An empty string yields an empty
// field, which callers treat as their natural order.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return "", DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}
