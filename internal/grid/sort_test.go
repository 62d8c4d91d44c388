package grid

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID   int
	Name string
	Age  Value
	Team string
}

func names(rows []person) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func nameColumn() Column[person] {
	return Column[person]{
		Key:        "name",
		Header:     "Name",
		Accessor:   func(p person) Value { return p.Name },
		Sortable:   true,
		Filterable: true,
	}
}

func ageColumn() Column[person] {
	return Column[person]{
		Key:      "age",
		Header:   "Age",
		Accessor: func(p person) Value { return p.Age },
		Sortable: true,
	}
}

func TestSortRows_InactiveKeepsOrder(t *testing.T) {
	rows := []person{{ID: 1, Name: "c"}, {ID: 2, Name: "a"}, {ID: 3, Name: "b"}}
	got := SortRows(rows, SortState{}, nameColumn(), SortOptions{})
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Fatalf("order changed (-want +got):\n%s", diff)
	}
}

func TestSortRows_DoesNotMutateInput(t *testing.T) {
	rows := []person{{ID: 1, Name: "c"}, {ID: 2, Name: "a"}}
	_ = SortRows(rows, SortState{ColumnKey: "name"}, nameColumn(), SortOptions{})
	assert.Equal(t, []string{"c", "a"}, names(rows))
}

func TestSortRows_CaseSensitiveDefault(t *testing.T) {
	rows := []person{{ID: 1, Name: "Bob"}, {ID: 2, Name: "Amy"}, {ID: 3, Name: "amy"}}
	state := SortState{ColumnKey: "name"}

	got := SortRows(rows, state, nameColumn(), SortOptions{})
	assert.Equal(t, []string{"Amy", "Bob", "amy"}, names(got))

	// Repeating the sort is deterministic.
	again := SortRows(got, state, nameColumn(), SortOptions{})
	assert.Equal(t, names(got), names(again))
}

func TestSortRows_FoldCase(t *testing.T) {
	rows := []person{{ID: 1, Name: "Bob"}, {ID: 2, Name: "Amy"}, {ID: 3, Name: "amy"}}
	got := SortRows(rows, SortState{ColumnKey: "name"}, nameColumn(), SortOptions{FoldCase: true})
	assert.Equal(t, []string{"Amy", "amy", "Bob"}, names(got))
}

func TestSortRows_Numeric(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "ten", Age: 10},
		{ID: 2, Name: "nine", Age: int64(9)},
		{ID: 3, Name: "half", Age: 9.5},
	}
	got := SortRows(rows, SortState{ColumnKey: "age"}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"nine", "half", "ten"}, names(got))

	got = SortRows(rows, SortState{ColumnKey: "age", Direction: Descending}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"ten", "half", "nine"}, names(got))
}

func TestSortRows_Chronological(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	rows := []person{
		{ID: 1, Name: "third", Age: day(3)},
		{ID: 2, Name: "first", Age: day(1)},
		{ID: 3, Name: "second", Age: day(2)},
	}
	got := SortRows(rows, SortState{ColumnKey: "age"}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"first", "second", "third"}, names(got))
}

func TestSortRows_NilLastBothDirections(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "none", Age: nil},
		{ID: 2, Name: "old", Age: 80},
		{ID: 3, Name: "young", Age: 20},
		{ID: 4, Name: "none2", Age: nil},
	}

	asc := SortRows(rows, SortState{ColumnKey: "age"}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"young", "old", "none", "none2"}, names(asc))

	desc := SortRows(rows, SortState{ColumnKey: "age", Direction: Descending}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"old", "young", "none", "none2"}, names(desc))
}

func TestSortRows_LargeIntegersExact(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "above", Age: int64(1<<53 + 1)},
		{ID: 2, Name: "at", Age: int64(1 << 53)},
		{ID: 3, Name: "max", Age: uint64(math.MaxUint64)},
		{ID: 4, Name: "negative", Age: int64(-1)},
		{ID: 5, Name: "half", Age: 2.5},
	}

	asc := SortRows(rows, SortState{ColumnKey: "age"}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"negative", "half", "at", "above", "max"}, names(asc))

	desc := SortRows(rows, SortState{ColumnKey: "age", Direction: Descending}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"max", "above", "at", "half", "negative"}, names(desc))
}

func TestSortRows_NaNAfterNumbersBeforeNil(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "three", Age: 3.0},
		{ID: 2, Name: "nan", Age: math.NaN()},
		{ID: 3, Name: "none", Age: nil},
		{ID: 4, Name: "one", Age: 1.0},
		{ID: 5, Name: "two", Age: 2.0},
	}

	asc := SortRows(rows, SortState{ColumnKey: "age"}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"one", "two", "three", "nan", "none"}, names(asc))

	desc := SortRows(rows, SortState{ColumnKey: "age", Direction: Descending}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"three", "two", "one", "nan", "none"}, names(desc))
}

func TestCompareValues_Numbers(t *testing.T) {
	assert.Equal(t, -1, CompareValues(int64(1<<53), int64(1<<53+1), false))
	assert.Equal(t, 1, CompareValues(uint64(1<<63), int64(math.MaxInt64), false))
	assert.Equal(t, -1, CompareValues(int8(-3), uint8(0), false))
	assert.Equal(t, 0, CompareValues(2, 2.0, false))
	assert.Equal(t, -1, CompareValues(math.NaN(), -1.0, false))
	assert.Equal(t, 0, CompareValues(math.NaN(), math.NaN(), false))
}

func TestSortRows_StableAcrossDirections(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "a1", Team: "x"},
		{ID: 2, Name: "b1", Team: "y"},
		{ID: 3, Name: "a2", Team: "x"},
		{ID: 4, Name: "b2", Team: "y"},
		{ID: 5, Name: "a3", Team: "x"},
	}
	team := Column[person]{Key: "team", Accessor: func(p person) Value { return p.Team }, Sortable: true}

	asc := SortRows(rows, SortState{ColumnKey: "team"}, team, SortOptions{})
	require.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, names(asc))

	desc := SortRows(asc, SortState{ColumnKey: "team", Direction: Descending}, team, SortOptions{})
	require.Equal(t, []string{"b1", "b2", "a1", "a2", "a3"}, names(desc))

	back := SortRows(desc, SortState{ColumnKey: "team"}, team, SortOptions{})
	require.Equal(t, names(asc), names(back))
}

func TestSortRows_MixedKinds(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "str", Age: "x"},
		{ID: 2, Name: "num", Age: 3},
		{ID: 3, Name: "bool", Age: true},
	}
	got := SortRows(rows, SortState{ColumnKey: "age"}, ageColumn(), SortOptions{})
	assert.Equal(t, []string{"bool", "num", "str"}, names(got))
}

func TestNextSort_Cycle(t *testing.T) {
	s := nextSort(SortState{}, "name")
	assert.Equal(t, SortState{ColumnKey: "name", Direction: Ascending}, s)
	s = nextSort(s, "name")
	assert.Equal(t, SortState{ColumnKey: "name", Direction: Descending}, s)
	s = nextSort(s, "name")
	assert.Equal(t, SortState{}, s)

	s = nextSort(SortState{ColumnKey: "name", Direction: Descending}, "age")
	assert.Equal(t, SortState{ColumnKey: "age", Direction: Ascending}, s)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{42, "42"},
		{int64(-7), "-7"},
		{2.5, "2.5"},
		{true, "true"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), "2024-03-01T12:30:00Z"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
