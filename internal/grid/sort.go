package grid

import (
	"cmp"
	"slices"
)

// Direction is the ordering applied to the active sort column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortState names the active sort column. An empty ColumnKey means rows
// keep their insertion order.
type SortState struct {
	ColumnKey string
	Direction Direction
}

// Active reports whether a column is being sorted on.
func (s SortState) Active() bool {
	return s.ColumnKey != ""
}

// SortOptions tunes value comparison.
type SortOptions struct {
	// FoldCase compares strings case-insensitively. The default is bytewise,
	// so "Bob" sorts before "amy".
	FoldCase bool
}

// SortRows returns rows ordered by col according to state. The input slice is
// never modified. Equal values keep their input order. NaN and then nil are
// placed after every other value in both directions.
func SortRows[R any](rows []R, state SortState, col Column[R], opts SortOptions) []R {
	out := slices.Clone(rows)
	if !state.Active() || col.Accessor == nil {
		return out
	}

	// Reading each value once keeps accessor calls linear in len(rows).
	type keyed struct {
		row R
		val Value
	}
	ks := make([]keyed, len(out))
	for i, r := range out {
		ks[i] = keyed{row: r, val: col.value(r)}
	}

	desc := state.Direction == Descending
	slices.SortStableFunc(ks, func(a, b keyed) int {
		ra, rb := missingRank(a.val), missingRank(b.val)
		if ra != 0 || rb != 0 {
			return cmp.Compare(ra, rb)
		}
		c := CompareValues(a.val, b.val, opts.FoldCase)
		if desc {
			return -c
		}
		return c
	})

	for i := range ks {
		out[i] = ks[i].row
	}
	return out
}

// missingRank groups values that have no place in the natural order.
func missingRank(v Value) int {
	switch {
	case IsNil(v):
		return 2
	case IsNaN(v):
		return 1
	}
	return 0
}

// nextSort advances the header-click cycle: a new column starts ascending,
// the active column goes asc -> desc -> off.
func nextSort(cur SortState, key string) SortState {
	if cur.ColumnKey != key {
		return SortState{ColumnKey: key, Direction: Ascending}
	}
	if cur.Direction == Ascending {
		return SortState{ColumnKey: key, Direction: Descending}
	}
	return SortState{}
}
