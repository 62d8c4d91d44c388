package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_Window(t *testing.T) {
	got, st := Paginate(ints(25), PageState{Index: 1, Size: 10}, ClientPaged)
	assert.Equal(t, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, got)
	assert.Equal(t, 25, st.TotalCount)
	assert.Equal(t, 3, st.PageCount())
}

func TestPaginate_LastPagePartial(t *testing.T) {
	got, _ := Paginate(ints(25), PageState{Index: 2, Size: 10}, ClientPaged)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, got)
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	last, _ := Paginate(ints(25), PageState{Index: 2, Size: 10}, ClientPaged)
	got, st := Paginate(ints(25), PageState{Index: 5, Size: 10}, ClientPaged)
	assert.Equal(t, last, got)
	assert.Equal(t, 2, st.Index)

	got, st = Paginate(ints(25), PageState{Index: -3, Size: 10}, ClientPaged)
	assert.Equal(t, ints(10), got)
	assert.Equal(t, 0, st.Index)
}

func TestPaginate_Empty(t *testing.T) {
	got, st := Paginate([]int{}, PageState{Index: 4, Size: 10}, ClientPaged)
	assert.Empty(t, got)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 1, st.PageCount())
}

func TestPaginate_Disabled(t *testing.T) {
	got, st := Paginate(ints(25), PageState{Index: 3}, ClientPaged)
	assert.Len(t, got, 25)
	assert.Equal(t, 0, st.Index)
}

func TestPaginate_ServerPagedReturnsRowsWhole(t *testing.T) {
	page := []int{30, 31, 32}
	got, st := Paginate(page, PageState{Index: 3, Size: 10, TotalCount: 33}, ServerPaged)
	assert.Equal(t, page, got)
	assert.Equal(t, 3, st.Index)
	assert.Equal(t, 4, st.PageCount())

	_, st = Paginate(page, PageState{Index: 9, Size: 10, TotalCount: 33}, ServerPaged)
	assert.Equal(t, 3, st.Index)
}
