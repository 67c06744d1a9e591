// Package paging splits filtered rows into pages.
package paging

import "github.com/rebeliceyang/lazytable/internal/models"

// Pager tracks the current page over a number of rows
type Pager struct {
	Size    int // rows per page, <= 0 shows everything on one page
	Current int // 1-based
	Limit   int // maximum number of page links

	total int
}

// NewPager creates a pager on the first page
func NewPager(size, limit int) *Pager {
	return &Pager{Size: size, Current: 1, Limit: limit}
}

// Total returns the number of rows being paged
func (p *Pager) Total() int {
	return p.total
}

// SetTotal sets the row count and keeps Current in range
func (p *Pager) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.total = n
	p.GoTo(p.Current)
}

// Pages returns the page count, at least 1
func (p *Pager) Pages() int {
	if p.Size <= 0 || p.total == 0 {
		return 1
	}
	return (p.total + p.Size - 1) / p.Size
}

// GoTo moves to page n, clamped to the valid range
func (p *Pager) GoTo(n int) {
	switch pages := p.Pages(); {
	case n < 1:
		p.Current = 1
	case n > pages:
		p.Current = pages
	default:
		p.Current = n
	}
}

func (p *Pager) First() { p.GoTo(1) }
func (p *Pager) Prev()  { p.GoTo(p.Current - 1) }
func (p *Pager) Next()  { p.GoTo(p.Current + 1) }
func (p *Pager) Last()  { p.GoTo(p.Pages()) }

// Bounds returns the 1-based indexes of the first and last row on the
// current page, or 0, 0 when there are no rows
func (p *Pager) Bounds() (int, int) {
	if p.total == 0 {
		return 0, 0
	}
	if p.Size <= 0 {
		return 1, p.total
	}
	first := (p.Current-1)*p.Size + 1
	last := min(first+p.Size-1, p.total)
	return first, last
}

// Slice returns the rows on the current page. It sets the total from rows.
func (p *Pager) Slice(rows []*models.Row) []*models.Row {
	p.SetTotal(len(rows))
	first, last := p.Bounds()
	if first == 0 {
		return rows[:0]
	}
	return rows[first-1 : last]
}

// Links returns up to Limit page numbers centred on the current page
func (p *Pager) Links() []int {
	pages := p.Pages()
	limit := p.Limit
	if limit <= 0 || limit > pages {
		limit = pages
	}

	start := p.Current - limit/2
	start = max(start, 1)
	start = min(start, pages-limit+1)

	links := make([]int, limit)
	for i := range links {
		links[i] = start + i
	}
	return links
}
