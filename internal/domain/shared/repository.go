package shared

// Pagination limits result sets returned by query operations.
// A zero PageSize means no limit.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the number of records to skip
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Paginate slices items according to the pagination window
func Paginate[T any](items []T, p Pagination) []T {
	if p.PageSize <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
