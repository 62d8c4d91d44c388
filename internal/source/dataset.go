// Package source loads tabular data from files and databases into a
// Dataset: named, typed columns plus records with stable identifiers.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/util"
)

// Kind is the dominant value type of a column. It only drives presentation
// (alignment); sorting always compares the values themselves.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindMixed:
		return "mixed"
	}
	return "empty"
}

// Numeric reports whether the column holds numbers only.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Field is one column of a dataset.
type Field struct {
	Name string
	Kind Kind
}

// Record is one row. Values is parallel to Dataset.Fields.
type Record struct {
	ID     string
	Values []grid.Value
}

// Value returns the value at column i, or nil when the record is short.
func (r Record) Value(i int) grid.Value {
	if i < 0 || i >= len(r.Values) {
		return nil
	}
	return r.Values[i]
}

// Dataset is a loaded table.
type Dataset struct {
	Name    string
	Fields  []Field
	Records []Record
}

// FieldNames returns the column names in order.
func (d *Dataset) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the position of the named column, or -1.
func (d *Dataset) FieldIndex(name string) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Loader produces a dataset.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Pager serves a query one page at a time, for server-driven pagination.
type Pager interface {
	Count(ctx context.Context) (int, error)
	Page(ctx context.Context, offset, limit int) (*Dataset, error)
}

// Options configures how records are identified and how files are parsed.
type Options struct {
	// IDColumn names the column whose value identifies a record. Empty means
	// ids are derived from each record's content.
	IDColumn string
	// Delimiter for CSV input; zero means ','.
	Delimiter rune
	// Format overrides detection from the file extension.
	Format Format
}

// buildDataset finishes a dataset from raw columns and rows: infers kinds and
// assigns ids.
func buildDataset(name string, columns []string, rows [][]grid.Value, opts Options) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: %w", name, util.ErrNoColumns)
	}

	ds := &Dataset{Name: name, Fields: make([]Field, len(columns))}
	for i, c := range columns {
		ds.Fields[i] = Field{Name: c}
	}

	idIdx := -1
	if opts.IDColumn != "" {
		idIdx = ds.FieldIndex(opts.IDColumn)
		if idIdx < 0 {
			return nil, util.UnknownColumnError("id", opts.IDColumn, columns)
		}
	}

	ds.Records = make([]Record, len(rows))
	seen := make(map[string]int)
	for i, vals := range rows {
		if len(vals) < len(columns) {
			padded := make([]grid.Value, len(columns))
			copy(padded, vals)
			vals = padded
		} else if len(vals) > len(columns) {
			vals = vals[:len(columns)]
		}

		rec := Record{Values: vals}
		if idIdx >= 0 {
			// An empty id stays empty; the table rejects such rows.
			rec.ID = grid.FormatValue(vals[idIdx])
		} else {
			rec.ID = contentID(vals, seen)
		}
		ds.Records[i] = rec
	}

	for i := range ds.Fields {
		ds.Fields[i].Kind = columnKind(ds.Records, i)
	}
	return ds, nil
}

// contentIDLen is how many hex digits of the row hash make up an id.
const contentIDLen = 16

// contentID identifies a record by the values it holds, so reloading an
// unchanged row yields the same id. Repeats of an identical row are told
// apart by occurrence: the second copy gets "~2", and so on.
func contentID(vals []grid.Value, seen map[string]int) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		if v == nil {
			b.WriteByte(0)
			continue
		}
		fmt.Fprintf(&b, "%T:%s", v, grid.FormatValue(v))
	}
	id := util.HashBytes([]byte(b.String()))[:contentIDLen]

	seen[id]++
	if n := seen[id]; n > 1 {
		return fmt.Sprintf("%s~%d", id, n)
	}
	return id
}

func columnKind(records []Record, col int) Kind {
	kind := KindEmpty
	for _, r := range records {
		k := kindOfValue(r.Value(col))
		if k == KindEmpty {
			continue
		}
		switch {
		case kind == KindEmpty:
			kind = k
		case kind == k:
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindMixed
		}
	}
	return kind
}
