package util

// PageQuery is the common paging query-string shape.
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Clamp normalizes paging inputs: page < 1 clamps to 1, pageSize < 1 falls
// back to def, pageSize above maxSize clamps to maxSize.
func (p PageQuery) Clamp(def, maxSize int) (page, pageSize int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	pageSize = p.PageSize
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

// Offset converts (page, pageSize) into the query offset.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// Pages computes the page count for a total row count.
func Pages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
