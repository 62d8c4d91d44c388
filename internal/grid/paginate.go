package grid

// PaginationMode says who slices rows into pages.
type PaginationMode int

const (
	// ClientPaged: the table holds every row and cuts the page itself.
	ClientPaged PaginationMode = iota
	// ServerPaged: the rows handed to the table are already the current
	// page; TotalCount carries the size of the whole result.
	ServerPaged
)

// PageState is a page position. PageSize <= 0 disables paging.
type PageState struct {
	Index      int // 0-based
	Size       int
	TotalCount int // rows across all pages
}

// PageCount returns the number of pages for total rows. An empty result
// still has one (empty) page.
func (p PageState) PageCount() int {
	if p.Size <= 0 || p.TotalCount <= 0 {
		return 1
	}
	return (p.TotalCount + p.Size - 1) / p.Size
}

// clamp pins Index into [0, PageCount).
func (p PageState) clamp() PageState {
	if last := p.PageCount() - 1; p.Index > last {
		p.Index = last
	}
	if p.Index < 0 {
		p.Index = 0
	}
	return p
}

// Paginate returns the window of rows for state and the effective (clamped)
// state. In ClientPaged mode TotalCount is taken from len(rows) and an
// out-of-range Index lands on the last page. In ServerPaged mode rows are
// returned whole and only Index is clamped against TotalCount.
func Paginate[R any](rows []R, state PageState, mode PaginationMode) ([]R, PageState) {
	if mode == ServerPaged {
		return rows, state.clamp()
	}

	state.TotalCount = len(rows)
	state = state.clamp()
	if state.Size <= 0 {
		return rows, state
	}

	start := state.Index * state.Size
	end := start + state.Size
	if end > len(rows) {
		end = len(rows)
	}
	if start > end {
		start = end
	}
	return rows[start:end], state
}
