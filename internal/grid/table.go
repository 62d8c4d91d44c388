package grid

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// StateMode says who owns one piece of table state.
type StateMode int

const (
	// SelfManaged state lives in the table. Change callbacks, when set, are
	// notified after the table has updated itself.
	SelfManaged StateMode = iota
	// Controlled state lives in the caller. The table never writes it; it
	// hands the requested value to the change callback, and the caller pushes
	// the accepted value back through the matching Sync method.
	Controlled
)

// Modes picks the ownership of each piece of state independently.
type Modes struct {
	Sort      StateMode
	Filter    StateMode
	Page      StateMode
	Selection StateMode
}

// Config is everything a table is built from. Only Columns and RowID are
// required.
type Config[R any, K comparable] struct {
	Columns []Column[R]
	// RowID returns the stable identifier of a row, or false when the row
	// has none.
	RowID func(row R) (K, bool)
	Rows  []R

	// Initial state. The zero values mean: insertion order, no filter,
	// paging disabled, nothing selected.
	Sort       SortState
	Filter     *Filter[R]
	Page       PageState
	Pagination PaginationMode
	Selection  []K

	BulkActions []BulkAction[R]

	Modes             Modes
	OnSortChange      func(SortState)
	OnFilterChange    func(*Filter[R])
	OnPageChange      func(PageState)
	OnSelectionChange func(ids []K)

	SortOptions SortOptions
	// CheckUniqueIDs makes SetRows reject row sets with repeated ids. It costs
	// one map insert per row and is off by default.
	CheckUniqueIDs bool
	Loading        bool

	// Logger receives debug events for state changes. Nil disables logging.
	Logger *zap.Logger
}

// Table wires the column schema, sort, filter, pagination and selection
// together. A Table is not safe for concurrent use; front ends drive it from
// their single event loop.
type Table[R any, K comparable] struct {
	cols  []Column[R]
	rowID func(R) (K, bool)

	rows  []R
	ids   []K // ids[i] identifies rows[i]
	index map[K]int

	sort       SortState
	filter     *Filter[R]
	page       PageState
	pagination PaginationMode
	sel        *Selection[K]

	actions []BulkAction[R]

	modes             Modes
	onSortChange      func(SortState)
	onFilterChange    func(*Filter[R])
	onPageChange      func(PageState)
	onSelectionChange func([]K)

	sortOpts    SortOptions
	checkUnique bool
	loading     bool

	log *zap.Logger
}

// NewTable validates cfg and builds a table. Configuration problems are
// returned as *ConfigError.
func NewTable[R any, K comparable](cfg Config[R, K]) (*Table[R, K], error) {
	if err := validateColumns(cfg.Columns); err != nil {
		return nil, err
	}
	if cfg.RowID == nil {
		return nil, configErr("RowID", ErrMissingRowIDFunc, "a table needs row identifiers for selection")
	}

	controlled := []struct {
		name  string
		mode  StateMode
		isSet bool
	}{
		{"OnSortChange", cfg.Modes.Sort, cfg.OnSortChange != nil},
		{"OnFilterChange", cfg.Modes.Filter, cfg.OnFilterChange != nil},
		{"OnPageChange", cfg.Modes.Page, cfg.OnPageChange != nil},
		{"OnSelectionChange", cfg.Modes.Selection, cfg.OnSelectionChange != nil},
	}
	for _, c := range controlled {
		if c.mode == Controlled && !c.isSet {
			return nil, configErr(c.name, ErrMissingCallback, "controlled mode requires it")
		}
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	t := &Table[R, K]{
		cols:              slices.Clone(cfg.Columns),
		rowID:             cfg.RowID,
		sort:              cfg.Sort,
		filter:            cfg.Filter,
		page:              cfg.Page,
		pagination:        cfg.Pagination,
		sel:               NewSelection[K](),
		actions:           slices.Clone(cfg.BulkActions),
		modes:             cfg.Modes,
		onSortChange:      cfg.OnSortChange,
		onFilterChange:    cfg.OnFilterChange,
		onPageChange:      cfg.OnPageChange,
		onSelectionChange: cfg.OnSelectionChange,
		sortOpts:          cfg.SortOptions,
		checkUnique:       cfg.CheckUniqueIDs,
		loading:           cfg.Loading,
		log:               log,
	}
	if t.sort.Active() {
		if c, ok := findColumn(t.cols, t.sort.ColumnKey); !ok || !c.Sortable {
			t.sort = SortState{}
		}
	}

	if err := t.setRows(cfg.Rows, false); err != nil {
		return nil, err
	}
	for _, id := range cfg.Selection {
		if _, ok := t.index[id]; ok {
			t.sel.ids[id] = struct{}{}
		}
	}
	return t, nil
}

// ─────────────────────────────────────────────────────────────────────────
// Rows
// ─────────────────────────────────────────────────────────────────────────

// SetRows replaces the full row set. Every row must carry an identifier;
// otherwise the call fails and the table keeps its previous rows. Selected
// ids that no longer match a row are pruned.
func (t *Table[R, K]) SetRows(rows []R) error {
	return t.setRows(rows, true)
}

func (t *Table[R, K]) setRows(rows []R, notify bool) error {
	ids := make([]K, len(rows))
	index := make(map[K]int, len(rows))
	for i, r := range rows {
		id, ok := t.rowID(r)
		if !ok {
			return configErr(fmt.Sprintf("rows[%d]", i), ErrMissingRowID, "every row needs an identifier")
		}
		if _, dup := index[id]; dup && t.checkUnique {
			return configErr(fmt.Sprintf("rows[%d]", i), ErrDuplicateRowID, "id %v", id)
		}
		ids[i] = id
		index[id] = i
	}

	t.rows = slices.Clone(rows)
	t.ids = ids
	t.index = index
	t.log.Debug("rows replaced", zap.Int("count", len(rows)))

	if notify {
		t.pruneSelection()
	}
	return nil
}

func (t *Table[R, K]) pruneSelection() {
	present := make(map[K]struct{}, len(t.index))
	for id := range t.index {
		present[id] = struct{}{}
	}
	t.mutateSelection(func(s *Selection[K]) bool {
		return s.Prune(present)
	})
}

// Rows returns a copy of the full row set in insertion order.
func (t *Table[R, K]) Rows() []R {
	return slices.Clone(t.rows)
}

// RowID returns the identifier of row.
func (t *Table[R, K]) RowID(row R) (K, bool) {
	return t.rowID(row)
}

// Row looks a row up by id in the full row set.
func (t *Table[R, K]) Row(id K) (R, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero R
		return zero, false
	}
	return t.rows[i], true
}

// ─────────────────────────────────────────────────────────────────────────
// Columns
// ─────────────────────────────────────────────────────────────────────────

func (t *Table[R, K]) Columns() []Column[R] {
	return slices.Clone(t.cols)
}

func (t *Table[R, K]) Column(key string) (Column[R], bool) {
	return findColumn(t.cols, key)
}

// Cell returns the display text of the column key for row. Unknown keys
// render empty.
func (t *Table[R, K]) Cell(row R, key string) string {
	c, ok := findColumn(t.cols, key)
	if !ok {
		return ""
	}
	return c.Display(row)
}

// ─────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────

// filtered applies filter then sort. Both steps preserve the relative order
// of the rows they keep, so the order of the two does not change the result.
func (t *Table[R, K]) filtered() []R {
	rows := FilterRows(t.rows, t.filter, t.cols)
	if !t.sort.Active() {
		return rows
	}
	col, ok := findColumn(t.cols, t.sort.ColumnKey)
	if !ok {
		return rows
	}
	return SortRows(rows, t.sort, col, t.sortOpts)
}

func (t *Table[R, K]) window() ([]R, PageState) {
	return Paginate(t.filtered(), t.page, t.pagination)
}

// VisibleRows returns the rows to render: filtered, sorted, then paged.
func (t *Table[R, K]) VisibleRows() []R {
	rows, _ := t.window()
	return rows
}

// VisibleIDs returns the identifiers of VisibleRows in the same order.
func (t *Table[R, K]) VisibleIDs() []K {
	rows := t.VisibleRows()
	ids := make([]K, 0, len(rows))
	for _, r := range rows {
		if id, ok := t.rowID(r); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FilteredRows returns every row passing the filter in sorted order, across
// all pages.
func (t *Table[R, K]) FilteredRows() []R {
	return t.filtered()
}

// FilteredCount is the number of rows passing the filter, across all pages.
func (t *Table[R, K]) FilteredCount() int {
	return len(FilterRows(t.rows, t.filter, t.cols))
}

func (t *Table[R, K]) IsLoading() bool {
	return t.loading
}

func (t *Table[R, K]) SetLoading(loading bool) {
	t.loading = loading
}

// IsEmpty reports whether the table has no rows at all.
func (t *Table[R, K]) IsEmpty() bool {
	return len(t.rows) == 0
}

// NoMatches reports whether rows exist but the filter excludes all of them.
func (t *Table[R, K]) NoMatches() bool {
	return len(t.rows) > 0 && t.FilteredCount() == 0
}

// ─────────────────────────────────────────────────────────────────────────
// Sort
// ─────────────────────────────────────────────────────────────────────────

func (t *Table[R, K]) SortState() SortState {
	return t.sort
}

// SetSort advances the sort for key: a new column sorts ascending, and the
// active column cycles asc, desc, off. Unknown and non-sortable keys are
// ignored.
func (t *Table[R, K]) SetSort(key string) {
	c, ok := findColumn(t.cols, key)
	if !ok || !c.Sortable {
		t.log.Debug("sort ignored", zap.String("column", key))
		return
	}
	next := nextSort(t.sort, key)

	if t.modes.Sort == Controlled {
		t.onSortChange(next)
		return
	}
	t.sort = next
	t.log.Debug("sort changed", zap.String("column", next.ColumnKey), zap.Stringer("direction", next.Direction))
	if t.onSortChange != nil {
		t.onSortChange(next)
	}
}

// SyncSort installs a sort state owned by the caller.
func (t *Table[R, K]) SyncSort(s SortState) {
	if s.Active() {
		if c, ok := findColumn(t.cols, s.ColumnKey); !ok || !c.Sortable {
			return
		}
	}
	t.sort = s
}

// ─────────────────────────────────────────────────────────────────────────
// Filter
// ─────────────────────────────────────────────────────────────────────────

func (t *Table[R, K]) FilterState() *Filter[R] {
	return t.filter
}

// SetFilter replaces the filter and returns to the first page. A nil filter
// shows every row.
func (t *Table[R, K]) SetFilter(f *Filter[R]) {
	if f.IsZero() {
		f = nil
	}

	if t.modes.Filter == Controlled {
		t.onFilterChange(f)
	} else {
		t.filter = f
		t.log.Debug("filter changed", zap.Bool("active", f != nil))
		if t.onFilterChange != nil {
			t.onFilterChange(f)
		}
	}
	t.SetPage(0)
}

// SyncFilter installs a filter owned by the caller.
func (t *Table[R, K]) SyncFilter(f *Filter[R]) {
	if f.IsZero() {
		f = nil
	}
	t.filter = f
}

// ─────────────────────────────────────────────────────────────────────────
// Pagination
// ─────────────────────────────────────────────────────────────────────────

// PageState returns the effective page position, clamped to the current
// filtered row count (or TotalCount for server paging).
func (t *Table[R, K]) PageState() PageState {
	_, p := t.window()
	return p
}

func (t *Table[R, K]) PageCount() int {
	return t.PageState().PageCount()
}

func (t *Table[R, K]) PaginationMode() PaginationMode {
	return t.pagination
}

// SetPage moves to page index, clamped into range.
func (t *Table[R, K]) SetPage(index int) {
	next := t.page
	trial := next
	trial.Index = index
	if t.pagination == ClientPaged {
		trial.TotalCount = t.FilteredCount()
	}
	next.Index = trial.clamp().Index
	t.setPage(next)
}

// SetPageSize changes the page size and returns to the first page, since
// every page boundary moves. Sizes <= 0 disable paging.
func (t *Table[R, K]) SetPageSize(size int) {
	if size < 0 {
		size = 0
	}
	next := t.page
	next.Size = size
	next.Index = 0
	t.setPage(next)
}

func (t *Table[R, K]) setPage(next PageState) {
	if next == t.page {
		return
	}
	if t.modes.Page == Controlled {
		t.onPageChange(next)
		return
	}
	t.page = next
	t.log.Debug("page changed", zap.Int("index", next.Index), zap.Int("size", next.Size))
	if t.onPageChange != nil {
		t.onPageChange(next)
	}
}

// SyncPage installs a page position owned by the caller. For server paging
// this is also how TotalCount is updated.
func (t *Table[R, K]) SyncPage(p PageState) {
	t.page = p
}

// ─────────────────────────────────────────────────────────────────────────
// Selection
// ─────────────────────────────────────────────────────────────────────────

// mutateSelection applies fn to the selection. In controlled mode fn runs on
// a copy which is offered to the callback; the table's own set is kept.
func (t *Table[R, K]) mutateSelection(fn func(*Selection[K]) bool) {
	if t.modes.Selection == Controlled {
		c := t.sel.Clone()
		if fn(c) {
			t.onSelectionChange(t.orderedIDs(c))
		}
		return
	}
	if fn(t.sel) {
		t.log.Debug("selection changed", zap.Int("selected", t.sel.Len()))
		if t.onSelectionChange != nil {
			t.onSelectionChange(t.orderedIDs(t.sel))
		}
	}
}

// orderedIDs lists the ids of s that match a row, in row order.
func (t *Table[R, K]) orderedIDs(s *Selection[K]) []K {
	out := make([]K, 0, s.Len())
	for _, id := range t.ids {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

func (t *Table[R, K]) IsSelected(id K) bool {
	return t.sel.Has(id)
}

// ToggleRowSelection flips the selection of id. Ids without a row are
// ignored.
func (t *Table[R, K]) ToggleRowSelection(id K) {
	if _, ok := t.index[id]; !ok {
		return
	}
	t.mutateSelection(func(s *Selection[K]) bool {
		s.Toggle(id)
		return true
	})
}

// ToggleSelectAllVisible selects every visible row, or deselects them all
// when they are already selected. Rows off the current page or hidden by the
// filter are left alone.
func (t *Table[R, K]) ToggleSelectAllVisible() {
	visible := t.VisibleIDs()
	if len(visible) == 0 {
		return
	}
	t.mutateSelection(func(s *Selection[K]) bool {
		if s.IsAllSelected(visible) {
			s.DeselectAll(visible)
		} else {
			s.SelectAll(visible)
		}
		return true
	})
}

// IsAllVisibleSelected reports whether every visible row is selected.
func (t *Table[R, K]) IsAllVisibleSelected() bool {
	return t.sel.IsAllSelected(t.VisibleIDs())
}

func (t *Table[R, K]) ClearSelection() {
	t.mutateSelection(func(s *Selection[K]) bool {
		if s.Len() == 0 {
			return false
		}
		s.Clear()
		return true
	})
}

// SyncSelection installs a selection owned by the caller. Ids without a row
// are dropped.
func (t *Table[R, K]) SyncSelection(ids []K) {
	s := NewSelection[K]()
	for _, id := range ids {
		if _, ok := t.index[id]; ok {
			s.ids[id] = struct{}{}
		}
	}
	t.sel = s
}

// SelectedIDs returns the selected ids in row order.
func (t *Table[R, K]) SelectedIDs() []K {
	return t.orderedIDs(t.sel)
}

// SelectedRows resolves the selection against the full row set, in row
// order. Rows hidden by the current filter or page stay selected and are
// included.
func (t *Table[R, K]) SelectedRows() []R {
	out := make([]R, 0, t.sel.Len())
	for i, id := range t.ids {
		if t.sel.Has(id) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

// SelectedCount is the number of selected rows.
func (t *Table[R, K]) SelectedCount() int {
	n := 0
	for _, id := range t.ids {
		if t.sel.Has(id) {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────
// Bulk actions
// ─────────────────────────────────────────────────────────────────────────

func (t *Table[R, K]) BulkActions() []BulkAction[R] {
	return slices.Clone(t.actions)
}

// BulkActionsEnabled reports whether any row is selected.
func (t *Table[R, K]) BulkActionsEnabled() bool {
	return t.SelectedCount() > 0
}

// RunBulkAction invokes action i with the rows selected right now. It
// returns false when nothing is selected or i is out of range.
func (t *Table[R, K]) RunBulkAction(i int) bool {
	if i < 0 || i >= len(t.actions) || t.actions[i].Handler == nil {
		return false
	}
	selected := t.SelectedRows()
	if len(selected) == 0 {
		return false
	}
	t.log.Debug("bulk action", zap.String("label", t.actions[i].Label), zap.Int("rows", len(selected)))
	t.actions[i].Handler(selected)
	return true
}
