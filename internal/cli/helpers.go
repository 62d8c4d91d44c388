package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/imgajeed76/datagrid/internal/config"
	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
	"github.com/imgajeed76/datagrid/internal/ui"
	"github.com/imgajeed76/datagrid/internal/ui/table"
	"github.com/imgajeed76/datagrid/internal/util"
)

// displayFlags are the sort, filter, paging and output flags shared by the
// view and sql commands. Unset flags fall back to the config file.
type displayFlags struct {
	id           string
	sort         string
	filter       string
	filterColumn string
	pageSize     int
	pageSizeSet  bool
	page         int
	pageSet      bool
	mode         string
	modeSet      bool
	foldCase     bool
	json         bool
	raw          bool
	noPager      bool
}

func addDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Column that identifies rows (default: generated ids)")
	cmd.Flags().String("sort", "", "Sort by column, e.g. name or age:desc")
	cmd.Flags().String("filter", "", "Show only rows containing this text (case-insensitive)")
	cmd.Flags().String("filter-column", "", "Restrict --filter to one column")
	cmd.Flags().Int("page-size", 0, "Rows per page, 0 disables paging (default from config)")
	cmd.Flags().Int("page", 1, "Page to start on (1-based)")
	cmd.Flags().String("mode", "", "Table layout: standard, sticky or compact (default from config)")
	cmd.Flags().Bool("fold-case", false, "Sort text case-insensitively")
	cmd.Flags().Bool("json", false, "Output results as JSON array (all rows unless --page or --page-size is set)")
	cmd.Flags().Bool("raw", false, "Output raw values without formatting, all rows unless --page or --page-size is set")
	cmd.Flags().Bool("no-pager", false, "Disable interactive table view")
}

func readDisplayFlags(cmd *cobra.Command) displayFlags {
	f := cmd.Flags()
	var d displayFlags
	d.id, _ = f.GetString("id")
	d.sort, _ = f.GetString("sort")
	d.filter, _ = f.GetString("filter")
	d.filterColumn, _ = f.GetString("filter-column")
	d.pageSize, _ = f.GetInt("page-size")
	d.pageSizeSet = f.Changed("page-size")
	d.page, _ = f.GetInt("page")
	d.pageSet = f.Changed("page")
	d.mode, _ = f.GetString("mode")
	d.modeSet = f.Changed("mode")
	d.foldCase, _ = f.GetBool("fold-case")
	d.json, _ = f.GetBool("json")
	d.raw, _ = f.GetBool("raw")
	d.noPager, _ = f.GetBool("no-pager")
	return d
}

// sourceOptions merges the id and parsing settings of the config and flags.
func sourceOptions(d displayFlags, cfg *config.Config, format string) (source.Options, error) {
	opts := source.Options{IDColumn: cfg.Source.IDColumn}
	if d.id != "" {
		opts.IDColumn = d.id
	}

	delim, err := parseDelimiter(cfg.Source.CSVDelimiter)
	if err != nil {
		return opts, err
	}
	opts.Delimiter = delim

	if format != "" {
		f, err := source.ParseFormat(format)
		if err != nil {
			return opts, util.NewError(fmt.Sprintf("Unknown format '%s'", format)).
				WithMessage("Supported formats are csv, tsv, json and yaml").
				Wrap(err)
		}
		opts.Format = f
	}
	return opts, nil
}

// parseDelimiter accepts a single character or the escapes \t and "tab".
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\n' || r == '\r' {
		return 0, util.NewError(fmt.Sprintf("Invalid CSV delimiter %q", s)).
			WithMessage("The delimiter must be a single character other than a quote or newline").
			WithSuggestion(`datagrid config source.csv_delimiter ";"`)
	}
	return r, nil
}

// displayOptions turns flags and config into render options for ds,
// validating every column the flags name.
func displayOptions(d displayFlags, ds *source.Dataset, cfg *config.Config) (table.DisplayOptions, error) {
	names := ds.FieldNames()
	opts := table.DisplayOptions{
		Title:    ds.Name,
		JSON:     d.json,
		Raw:      d.raw,
		NoPager:  d.noPager,
		ColWidth: cfg.Display.ColWidth,
		FoldCase: d.foldCase || cfg.Display.FoldCase,
		Timeout:  time.Duration(cfg.Source.QueryTimeout) * time.Second,
		Logger:   app.log,
	}

	modeName := cfg.Display.Mode
	if d.modeSet {
		modeName = d.mode
	}
	mode, err := table.ParseMode(modeName)
	if err != nil {
		return opts, util.NewError("Invalid table mode").
			WithMessage(err.Error()).
			WithSuggestion("datagrid view data.csv --mode compact").
			Wrap(err)
	}
	opts.Mode = mode

	if opts.Sort, err = parseSortFlag(d.sort, names); err != nil {
		return opts, err
	}
	if opts.Filter, err = buildFilter(d.filter, d.filterColumn, names); err != nil {
		return opts, err
	}

	size := cfg.Display.PageSize
	switch {
	case d.pageSizeSet:
		size = d.pageSize
	case (d.json || d.raw) && !d.pageSet:
		// Piped output carries every row unless a page is asked for.
		size = 0
	}
	opts.Page = grid.PageState{Index: max(d.page-1, 0), Size: max(size, 0)}
	return opts, nil
}

// parseSortFlag reads "column" or "column:asc|desc". A column whose name
// itself contains a colon is matched whole first.
func parseSortFlag(s string, columns []string) (grid.SortState, error) {
	if s == "" {
		return grid.SortState{}, nil
	}
	if slices.Contains(columns, s) {
		return grid.SortState{ColumnKey: s}, nil
	}

	name, dir := s, ""
	if i := strings.LastIndex(s, ":"); i >= 0 {
		name, dir = s[:i], strings.ToLower(s[i+1:])
	}

	state := grid.SortState{ColumnKey: name}
	switch dir {
	case "", "asc":
	case "desc":
		state.Direction = grid.Descending
	default:
		return grid.SortState{}, util.NewError(fmt.Sprintf("Invalid sort direction '%s'", dir)).
			WithMessage("Use column, column:asc or column:desc").
			WithSuggestion(fmt.Sprintf("datagrid view data.csv --sort %s:desc", name)).
			Wrap(util.ErrInvalidSortFlag)
	}
	if !slices.Contains(columns, name) {
		return grid.SortState{}, util.UnknownColumnError("sort", name, columns)
	}
	return state, nil
}

// buildFilter builds the --filter/--filter-column filter, or nil when no
// query is given.
func buildFilter(query, column string, columns []string) (*grid.Filter[source.Record], error) {
	if column != "" && !slices.Contains(columns, column) {
		return nil, util.UnknownColumnError("filter-column", column, columns)
	}
	if query == "" {
		return nil, nil
	}
	if column == "" {
		return grid.AnyColumnQuery[source.Record](query), nil
	}
	return grid.ColumnQuery[source.Record](column, query), nil
}

// showResults renders ds, turning engine configuration errors into
// user-facing ones.
func showResults(ds *source.Dataset, opts table.DisplayOptions) error {
	err := table.DisplayResults(ds, opts)
	var cfgErr *grid.ConfigError
	if errors.As(err, &cfgErr) {
		return util.TableConfigError(err)
	}
	return err
}

// withSpinner runs fn with a spinner on stderr.
func withSpinner[T any](message string, fn func() (T, error)) (T, error) {
	s := ui.NewSpinner(message)
	s.Start()
	defer s.Stop()
	return fn()
}
