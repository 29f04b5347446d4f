package pagination

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginateEmptyClampsToPageOne(t *testing.T) {
	page := Paginate([]int{}, 5, 10)

	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Zero(t, page.Total)
}

func TestPaginateSlices(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	page := Paginate(items, 3, 10)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []int{20, 21, 22}, page.Items)
	assert.Equal(t, 23, page.Total)

	page = Paginate(items, 1, 10)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 0, page.Items[0])
}

func TestPaginateReclampsWhenCountShrinks(t *testing.T) {
	// 23 items at pageSize 10 → 3 pages; the admin sits on page 3, then a
	// filter cuts the listing to 5 items → 1 page, page re-clamps to 1.
	big := make([]int, 23)
	small := make([]int, 5)

	assert.Equal(t, 3, Paginate(big, 3, 10).Page)

	page := Paginate(small, 3, 10)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Items, 5)
}

func TestPaginateBadInputs(t *testing.T) {
	items := []int{1, 2, 3}

	page := Paginate(items, 0, 2)
	assert.Equal(t, 1, page.Page)

	page = Paginate(items, -4, 2)
	assert.Equal(t, 1, page.Page)

	page = Paginate(items, 1, 0)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Len(t, page.Items, 3)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(23, 10))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
}

func TestFilter(t *testing.T) {
	names := []string{"alpha batch", "beta batch", "gamma"}

	kept := Filter(names, func(s string) bool { return strings.Contains(s, "batch") })
	assert.Equal(t, []string{"alpha batch", "beta batch"}, kept)

	kept = Filter(names, func(string) bool { return false })
	assert.Empty(t, kept)
}
