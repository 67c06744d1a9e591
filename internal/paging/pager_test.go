package paging_test

import (
	"testing"

	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n int) []*models.Row {
	out := make([]*models.Row, n)
	for i := range out {
		out[i] = &models.Row{Index: i}
	}
	return out
}

func TestPager_Pages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size, total, expected int
	}{
		{size: 10, total: 0, expected: 1},
		{size: 10, total: 1, expected: 1},
		{size: 10, total: 10, expected: 1},
		{size: 10, total: 11, expected: 2},
		{size: 3, total: 10, expected: 4},
		{size: 0, total: 50, expected: 1},
		{size: -1, total: 50, expected: 1},
	}

	for _, tt := range tests {
		p := paging.NewPager(tt.size, 5)
		p.SetTotal(tt.total)
		assert.Equal(t, tt.expected, p.Pages(), "size %d total %d", tt.size, tt.total)
	}
}

func TestPager_Navigation(t *testing.T) {
	t.Parallel()

	p := paging.NewPager(10, 5)
	p.SetTotal(35)

	p.Prev()
	assert.Equal(t, 1, p.Current)

	p.Next()
	assert.Equal(t, 2, p.Current)

	p.Last()
	assert.Equal(t, 4, p.Current)

	p.Next()
	assert.Equal(t, 4, p.Current)

	p.GoTo(99)
	assert.Equal(t, 4, p.Current)

	p.GoTo(-3)
	assert.Equal(t, 1, p.Current)

	p.Last()
	p.SetTotal(12)
	assert.Equal(t, 2, p.Current, "shrinking the total clamps the current page")

	p.First()
	assert.Equal(t, 1, p.Current)
}

func TestPager_Slice(t *testing.T) {
	t.Parallel()

	data := rows(25)
	p := paging.NewPager(10, 5)

	page := p.Slice(data)
	require.Len(t, page, 10)
	assert.Equal(t, 0, page[0].Index)
	first, last := p.Bounds()
	assert.Equal(t, 1, first)
	assert.Equal(t, 10, last)

	p.Last()
	page = p.Slice(data)
	require.Len(t, page, 5)
	assert.Equal(t, 20, page[0].Index)
	first, last = p.Bounds()
	assert.Equal(t, 21, first)
	assert.Equal(t, 25, last)

	assert.Empty(t, p.Slice(nil))
	first, last = p.Bounds()
	assert.Equal(t, 0, first)
	assert.Equal(t, 0, last)
	assert.Equal(t, 1, p.Current)

	all := paging.NewPager(0, 5)
	assert.Len(t, all.Slice(data), 25)
}

func TestPager_Links(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    int
		limit    int
		current  int
		expected []int
	}{
		{name: "start", total: 100, limit: 5, current: 1, expected: []int{1, 2, 3, 4, 5}},
		{name: "middle", total: 100, limit: 5, current: 5, expected: []int{3, 4, 5, 6, 7}},
		{name: "end", total: 100, limit: 5, current: 10, expected: []int{6, 7, 8, 9, 10}},
		{name: "even limit", total: 100, limit: 4, current: 5, expected: []int{3, 4, 5, 6}},
		{name: "fewer pages than limit", total: 25, limit: 5, current: 2, expected: []int{1, 2, 3}},
		{name: "no limit", total: 30, limit: 0, current: 1, expected: []int{1, 2, 3}},
		{name: "no rows", total: 0, limit: 5, current: 1, expected: []int{1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := paging.NewPager(10, tt.limit)
			p.SetTotal(tt.total)
			p.GoTo(tt.current)
			assert.Equal(t, tt.expected, p.Links())
		})
	}
}
