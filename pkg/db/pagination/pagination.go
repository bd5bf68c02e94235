package pagination

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 1000
)

type Pagination struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Normalize clamps page to >= 1 and limit to [1, MaxLimit]. A zero limit
// falls back to DefaultLimit.
func (p Pagination) Normalize() Pagination {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}

	limit := p.Limit
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(n.Limit)))
	}
	return PageInfo{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
