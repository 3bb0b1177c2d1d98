package listkit

// Pager resolves requested pagination state against the rules the UI relies
// on: changing page size or the filter/sort criteria snaps back to page 1,
// and out-of-range page requests are rejected rather than clamped into an
// empty slice.
type Pager struct {
	page      int
	pageSize  int
	total     int
	filterKey string
	sortKey   string
}

// NewPager starts on page 1 with the given page size.
func NewPager(pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager{page: 1, pageSize: pageSize}
}

func (p *Pager) Page() int     { return p.page }
func (p *Pager) PageSize() int { return p.pageSize }

// TotalPages is only meaningful after SetTotal.
func (p *Pager) TotalPages() int { return totalPagesFor(p.total, p.pageSize) }

// SetTotal records the filtered item count and pulls the current page back
// into range if the collection shrank underneath it.
func (p *Pager) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.total = n
	if tp := p.TotalPages(); tp > 0 && p.page > tp {
		p.page = tp
	}
}

// SetPage moves to page n. Out-of-range requests (n < 1 or past the last
// page) are a no-op and return false.
func (p *Pager) SetPage(n int) bool {
	if n < 1 {
		return false
	}
	if tp := p.TotalPages(); tp > 0 && n > tp {
		return false
	}
	if n != 1 && p.TotalPages() == 0 {
		return false
	}
	p.page = n
	return true
}

// SetPageSize changes the page size and resets to page 1.
func (p *Pager) SetPageSize(n int) {
	if n < 1 {
		n = 1
	}
	if n == p.pageSize {
		return
	}
	p.pageSize = n
	p.page = 1
}

// SetFilterKey resets to page 1 when the filter criteria change.
func (p *Pager) SetFilterKey(key string) {
	if key == p.filterKey {
		return
	}
	p.filterKey = key
	p.page = 1
}

// SetSortKey resets to page 1 when the sort criteria change.
func (p *Pager) SetSortKey(key string) {
	if key == p.sortKey {
		return
	}
	p.sortKey = key
	p.page = 1
}
