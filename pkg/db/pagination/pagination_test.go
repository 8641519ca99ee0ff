package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	page, size := Pagination{}.Normalize()
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = Pagination{Page: -3, PageSize: 9999}.Normalize()
	assert.Equal(t, 1, page)
	assert.Equal(t, 250, size)
}

func TestOffsetAndLimit(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2, PageSize: 10}, 35)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 10, info.PageSize)
	assert.Equal(t, int64(35), info.Total)
	assert.Equal(t, int64(4), info.TotalPages)

	info = BuildPageInfo(Pagination{Page: 1, PageSize: 10}, 0)
	assert.Equal(t, int64(0), info.TotalPages)
}
