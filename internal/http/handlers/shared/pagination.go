package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePagination 归一化分页参数，页大小上限 100。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
