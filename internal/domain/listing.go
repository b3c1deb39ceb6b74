package domain

// ListParams carries the shared pagination query: keyword substring filter,
// 1-based page index, page size, sort field and direction.
type ListParams struct {
	Keyword string
	Index   int
	Limit   int
	Sort    string
	Order   string
}

// Normalize clamps index/limit and the sort direction to usable values.
func (p *ListParams) Normalize(defaultLimit int) {
	if p.Index < 1 {
		p.Index = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Order != "desc" {
		p.Order = "asc"
	}
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Index - 1) * p.Limit
}

// Page is the pagination response envelope.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Index      int `json:"index"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage assembles a Page from items, a total row count and the params used.
func NewPage[T any](items []T, total int, p ListParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Page[T]{Items: items, Total: total, Index: p.Index, Limit: p.Limit, TotalPages: pages}
}
