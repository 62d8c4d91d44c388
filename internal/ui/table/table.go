// Package table renders a dataset through the grid engine. It supports an
// interactive TUI (sortable headers, filtering, paging, row selection with
// bulk actions, column expand/hide, smooth scrolling), plain text tables,
// JSON output, and raw tab-separated output.
//
// This package is used by both `datagrid view` and `datagrid sql`.
package table

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
	"github.com/imgajeed76/datagrid/internal/watch"
)

// Grid is the engine instance the front end drives.
type Grid = grid.Table[source.Record, string]

// DisplayOptions controls how results are rendered.
type DisplayOptions struct {
	// Title is shown in the interactive TUI header.
	Title string
	// JSON outputs the visible rows as a JSON array of objects.
	JSON bool
	// Raw outputs the visible rows as tab-separated values (for piping).
	Raw bool
	// NoPager forces plain table output even on a TTY.
	NoPager bool
	// Mode selects the table layout.
	Mode PresentationMode
	// ColWidth is the truncation width of columns in the TUI.
	ColWidth int

	// Initial engine state.
	Sort       grid.SortState
	Filter     *grid.Filter[source.Record]
	Page       grid.PageState
	Pagination grid.PaginationMode
	FoldCase   bool

	// Pager serves pages on demand when Pagination is ServerPaged.
	Pager source.Pager
	// Timeout bounds each page fetch or reload.
	Timeout time.Duration
	// Reload re-reads the source; used when Watch reports a change.
	Reload func(ctx context.Context) (*source.Dataset, error)
	Watch  *watch.Watcher

	Logger *zap.Logger
}

// Columns builds one sortable, filterable column per dataset field.
func Columns(fields []source.Field) []grid.Column[source.Record] {
	cols := make([]grid.Column[source.Record], len(fields))
	for i, f := range fields {
		cols[i] = grid.Column[source.Record]{
			Key:        f.Name,
			Header:     f.Name,
			Accessor:   func(r source.Record) grid.Value { return r.Value(i) },
			Sortable:   true,
			Filterable: true,
		}
	}
	return cols
}

// RecordID is the row identifier function for records.
func RecordID(r source.Record) (string, bool) {
	return r.ID, r.ID != ""
}

// gridConfig is the engine configuration for ds under opts, before any
// front-end hooks are attached.
func gridConfig(ds *source.Dataset, opts DisplayOptions) grid.Config[source.Record, string] {
	return grid.Config[source.Record, string]{
		Columns:     Columns(ds.Fields),
		RowID:       RecordID,
		Rows:        ds.Records,
		Sort:        opts.Sort,
		Filter:      opts.Filter,
		Page:        opts.Page,
		Pagination:  opts.Pagination,
		SortOptions: grid.SortOptions{FoldCase: opts.FoldCase},
		Logger:      opts.Logger,
	}
}

// NewGrid builds a self-managed grid over ds.
func NewGrid(ds *source.Dataset, opts DisplayOptions) (*Grid, error) {
	return grid.NewTable(gridConfig(ds, opts))
}

// DisplayResults picks the right output mode based on options and environment,
// then renders the dataset.
func DisplayResults(ds *source.Dataset, opts DisplayOptions) error {
	if opts.Raw || opts.JSON || opts.NoPager || !term.IsTerminal(int(os.Stdout.Fd())) || len(ds.Records) == 0 {
		g, err := NewGrid(ds, opts)
		if err != nil {
			return err
		}
		return Print(os.Stdout, ds.Fields, g, opts)
	}
	return RunTableTUI(ds, opts)
}

// Print writes the grid's visible rows in the non-interactive format chosen
// by opts.
func Print(w io.Writer, fields []source.Field, g *Grid, opts DisplayOptions) error {
	rows := g.VisibleRows()
	switch {
	case opts.Raw:
		return PrintRaw(w, rows)
	case opts.JSON:
		return PrintJSON(w, fields, rows)
	}
	PrintPlainTable(w, fields, rows, opts.Mode, footerFor(g))
	return nil
}

// cellText is the display form of a value in tables: NULL for missing values,
// control characters escaped so every row stays on one line.
func cellText(v grid.Value) string {
	if grid.IsNil(v) {
		return nullText
	}
	return escapeControl(grid.FormatValue(v))
}

const nullText = "NULL"

var controlEscaper = strings.NewReplacer("\n", "\\n", "\r", "\\r", "\t", "\\t")

func escapeControl(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") {
		return s
	}
	return controlEscaper.Replace(s)
}
