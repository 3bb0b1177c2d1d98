package listkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPager_PageSizeChangeResetsPage(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(25)
	assert.True(t, p.SetPage(3))
	assert.Equal(t, 3, p.Page())

	p.SetPageSize(25)
	assert.Equal(t, 1, p.Page())
	p.SetTotal(25)
	assert.Equal(t, 1, p.TotalPages())
}

func TestPager_SamePageSizeIsNoop(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(25)
	p.SetPage(2)
	p.SetPageSize(10)
	assert.Equal(t, 2, p.Page())
}

func TestPager_OutOfRangeRejected(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(25) // 3 pages
	p.SetPage(2)

	assert.False(t, p.SetPage(0))
	assert.Equal(t, 2, p.Page())

	assert.False(t, p.SetPage(4))
	assert.Equal(t, 2, p.Page())

	assert.True(t, p.SetPage(3))
	assert.Equal(t, 3, p.Page())
}

func TestPager_FilterChangeResetsPage(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(50)
	p.SetPage(4)

	p.SetFilterKey("watched")
	assert.Equal(t, 1, p.Page())

	// Re-applying the same filter keeps the page
	p.SetPage(2)
	p.SetFilterKey("watched")
	assert.Equal(t, 2, p.Page())
}

func TestPager_SortChangeResetsPage(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(50)
	p.SetPage(5)

	p.SetSortKey("title:asc")
	assert.Equal(t, 1, p.Page())
}

func TestPager_ShrinkingTotalPullsPageBack(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(50)
	p.SetPage(5)

	p.SetTotal(12) // now only 2 pages
	assert.Equal(t, 2, p.Page())
}
