package pagination

import "gorm.io/gorm"

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=50"`
}

type PageInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// Normalize clamps page and size to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Apply limits the statement to one page. It fetches one extra row so the
// caller can tell whether another page exists.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return stmt.Offset((p.Page - 1) * p.PageSize).Limit(p.PageSize + 1)
}

// Trim drops the look-ahead row fetched by Apply.
func Trim[T any](items []T, p Pagination) ([]T, PageInfo) {
	p = p.Normalize()
	info := PageInfo{Page: p.Page, PageSize: p.PageSize}
	if len(items) > p.PageSize {
		info.HasMore = true
		items = items[:p.PageSize]
	}
	return items, info
}
