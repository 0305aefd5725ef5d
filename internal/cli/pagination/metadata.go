package pagination

// Meta describes the page returned by a paginated listing.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewMeta computes page metadata for p over total items. Offset-based
// requests are expressed as the page the offset falls on.
func NewMeta(p Params, total int) Meta {
	offset, pageSize := p.OffsetLimit()
	if pageSize == 0 {
		pageSize = total
	}

	current := 1
	if pageSize > 0 {
		current = offset/pageSize + 1
	}

	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}

	return Meta{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalPages:  pages,
		TotalItems:  total,
		HasPrevious: current > 1,
		HasNext:     current < pages,
	}
}
