package paginate

// DefaultPageSize is used when the table enables pagination without
// configuring a size.
const DefaultPageSize = 25

// State is the transient pagination position of one grid instance.
type State struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// WithPageIndex returns the state moved to the given page.
func (s State) WithPageIndex(index int) State {
	if index < 0 {
		index = 0
	}
	return State{PageIndex: index, PageSize: s.PageSize}
}

// WithPageSize returns the state with a new page size. Changing the size
// always resets the position to the first page.
func (s State) WithPageSize(size int) State {
	if size <= 0 {
		size = DefaultPageSize
	}
	return State{PageIndex: 0, PageSize: size}
}

// Metadata describes the paged window over a total row count.
type Metadata struct {
	Total     int  `json:"total"`
	PageIndex int  `json:"pageIndex"`
	PageSize  int  `json:"pageSize"`
	PageCount int  `json:"pageCount"`
	HasMore   bool `json:"hasMore"`
}

// Describe computes the paging metadata for the given total.
func Describe(total int, s State) Metadata {
	if s.PageSize <= 0 {
		return Metadata{Total: total, PageIndex: 0, PageSize: total, PageCount: 1}
	}
	pageCount := (total + s.PageSize - 1) / s.PageSize
	if pageCount == 0 {
		pageCount = 1
	}
	return Metadata{
		Total:     total,
		PageIndex: s.PageIndex,
		PageSize:  s.PageSize,
		PageCount: pageCount,
		HasMore:   (s.PageIndex+1)*s.PageSize < total,
	}
}

// Slice returns the in-memory page for client-side pagination.
func Slice[T any](rows []T, s State) []T {
	if s.PageSize <= 0 {
		return rows
	}
	start := s.PageIndex * s.PageSize
	if start >= len(rows) || start < 0 {
		return []T{}
	}
	end := start + s.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
