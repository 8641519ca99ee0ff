package pagination

const (
	defaultPageSize = 20
	maxPageSize     = 250
)

type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// Normalize clamps page and page size into their allowed ranges.
func (p Pagination) Normalize() (int, int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	page, size := p.Normalize()
	return (page - 1) * size
}

// Limit returns the normalized page size.
func (p Pagination) Limit() int {
	_, size := p.Normalize()
	return size
}

type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	page, size := p.Normalize()
	totalPages := total / int64(size)
	if total%int64(size) != 0 {
		totalPages++
	}
	return PageInfo{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}
