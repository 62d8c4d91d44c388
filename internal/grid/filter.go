package grid

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter restricts which rows are shown. Exactly one form is used:
// Predicate when it is set, otherwise the ColumnKey/Query pair. An empty
// ColumnKey with a Query searches every filterable column.
type Filter[R any] struct {
	Predicate func(row R) bool
	ColumnKey string
	Query     string
}

// ColumnQuery returns a case-insensitive substring filter on one column.
func ColumnQuery[R any](key, query string) *Filter[R] {
	return &Filter[R]{ColumnKey: key, Query: query}
}

// AnyColumnQuery returns a filter matching query against all filterable
// columns.
func AnyColumnQuery[R any](query string) *Filter[R] {
	return &Filter[R]{Query: query}
}

// Where returns a filter backed by a caller predicate.
func Where[R any](pred func(row R) bool) *Filter[R] {
	return &Filter[R]{Predicate: pred}
}

// IsZero reports whether the filter lets every row through.
func (f *Filter[R]) IsZero() bool {
	return f == nil || (f.Predicate == nil && f.Query == "")
}

// foldString case-folds s for comparisons. A Caser carries state, so a fresh
// one is taken per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// FilterRows returns the rows matching f, in input order. A nil or zero
// filter returns a copy of rows.
func FilterRows[R any](rows []R, f *Filter[R], cols []Column[R]) []R {
	if f.IsZero() {
		return append([]R(nil), rows...)
	}

	match := f.matcher(cols)
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *Filter[R]) matcher(cols []Column[R]) func(R) bool {
	if f.Predicate != nil {
		return f.Predicate
	}

	query := foldString(f.Query)
	var targets []Column[R]
	if f.ColumnKey == "" {
		for _, c := range cols {
			if c.Filterable {
				targets = append(targets, c)
			}
		}
	} else if c, ok := findColumn(cols, f.ColumnKey); ok {
		targets = []Column[R]{c}
	}

	// An unknown ColumnKey leaves targets empty and matches no rows.
	return func(r R) bool {
		for _, c := range targets {
			if strings.Contains(foldString(FormatValue(c.value(r))), query) {
				return true
			}
		}
		return false
	}
}
