// Package grid is a generic tabular data engine: sorting, filtering,
// pagination and row selection over an arbitrary row type, driven by a set
// of column descriptors.
//
// The engine holds no presentation state. Front ends render VisibleRows and
// forward user intent (header clicks, keystrokes) to the Table methods.
package grid

import "fmt"

// Column describes how to read, sort, filter and display one column of R.
// A Column is immutable once handed to NewTable.
type Column[R any] struct {
	// Key identifies the column; unique within one table.
	Key string
	// Header is the title shown above the column.
	Header string
	// Accessor extracts the comparable value. It must be pure.
	Accessor func(row R) Value
	// Sortable columns respond to SetSort.
	Sortable bool
	// Filterable columns take part in column and all-column filters.
	Filterable bool
	// Render produces the display text. When nil the accessor's value is
	// formatted with FormatValue.
	Render func(row R) string
	// Width is a preferred display width in cells. Zero lets the front end
	// decide.
	Width int
}

// value reads the column's value, tolerating a missing accessor.
func (c Column[R]) value(row R) Value {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Display returns the text shown for row in this column.
func (c Column[R]) Display(row R) string {
	if c.Render != nil {
		return c.Render(row)
	}
	return FormatValue(c.value(row))
}

// validateColumns reports the first empty or duplicate key.
func validateColumns[R any](cols []Column[R]) error {
	seen := make(map[string]int, len(cols))
	for i, c := range cols {
		field := fmt.Sprintf("columns[%d]", i)
		if c.Key == "" {
			return configErr(field, ErrEmptyColumnKey, "header %q", c.Header)
		}
		if prev, ok := seen[c.Key]; ok {
			return configErr(field, ErrDuplicateColumnKey, "key %q already used by columns[%d]", c.Key, prev)
		}
		seen[c.Key] = i
	}
	return nil
}

func findColumn[R any](cols []Column[R], key string) (Column[R], bool) {
	for _, c := range cols {
		if c.Key == key {
			return c, true
		}
	}
	return Column[R]{}, false
}
