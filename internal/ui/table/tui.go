package table

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
)

// ═══════════════════════════════════════════════════════════════════════════
// Constants
// ═══════════════════════════════════════════════════════════════════════════

const (
	defaultColWidth = 20
	minColWidth     = 3
	hiddenColWidth  = 3
	gutterWidth     = 4 // selection checkbox plus a space
	defaultTimeout  = 60 * time.Second
)

// pageSizeSteps are the sizes +/- move between.
var pageSizeSteps = []int{5, 10, 20, 50, 100, 200, 500, 1000}

// Column display state
type colState int

const (
	colStateDefault  colState = iota // truncated to the configured width
	colStateExpanded                 // full width
	colStateHidden                   // minimal width (just "...")
)

// Table mode
type tableMode int

const (
	tableModeNormal tableMode = iota
	tableModeFilter
)

// Exit mode: what to print after the TUI quits
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

// session is the state shared between the model and the callbacks handed to
// the grid. Bubble Tea copies the model on every update; the grid and its
// hooks need one stable home.
type session struct {
	g      *Grid
	pager  source.Pager
	reload func(ctx context.Context) (*source.Dataset, error)
	log    *zap.Logger

	timeout time.Duration

	pending  []tea.Cmd // commands queued by grid callbacks
	fetchSeq int       // latest page request; older responses are dropped

	exportRows []source.Record
	quit       bool

	statusMsg   string
	statusKind  statusKind
	statusUntil time.Time

	reloadCh chan struct{}
	done     chan struct{}
}

type tableModel struct {
	title   string
	opts    DisplayOptions
	present presentation
	fields  []source.Field
	s       *session

	fullColWidths []int      // actual max width of each column's content
	colStates     []colState // display state for each column
	colWidth      int        // default truncation width
	cursor        int        // selected row (in the visible page)
	colCursor     int        // selected column
	scrollX       int        // horizontal scroll offset in characters
	scrollY       int        // vertical scroll offset in body lines
	width         int        // terminal width
	height        int        // terminal height
	ready         bool
	mode          tableMode
	filterInput   textinput.Model
	filterColumn  string   // column of the filter being edited; "" = all
	exitMode      exitMode // how to exit (for re-printing data)
	confirmAction int      // destructive action awaiting a second press, or -1

	// Animation state for smooth scrolling
	animating   bool
	animTargetX int
	animTargetY int
}

// ═══════════════════════════════════════════════════════════════════════════
// Key Bindings
// ═══════════════════════════════════════════════════════════════════════════

type tableKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	ShiftUp      key.Binding
	ShiftDown    key.Binding
	ShiftLeft    key.Binding
	ShiftRight   key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	GrowPage     key.Binding
	ShrinkPage   key.Binding
	Home         key.Binding
	End          key.Binding
	Expand       key.Binding
	Hide         key.Binding
	Sort         key.Binding
	Filter       key.Binding
	FilterColumn key.Binding
	Clear        key.Binding
	ToggleRow    key.Binding
	ToggleAll    key.Binding
	ClearSel     key.Binding
	Action       key.Binding
	Quit         key.Binding
	YankCell     key.Binding
	YankRow      key.Binding
	ExportJSON   key.Binding
	ExportRaw    key.Binding
	ExportPlain  key.Binding
}

var tableKeys = tableKeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:         key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev column")),
	Right:        key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next column")),
	ShiftUp:      key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("⇧↑", "half screen up")),
	ShiftDown:    key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("⇧↓", "half screen down")),
	ShiftLeft:    key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "scroll half left")),
	ShiftRight:   key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "scroll half right")),
	ScrollUp:     key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "screen up")),
	ScrollDown:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "screen down")),
	NextPage:     key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage:     key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	GrowPage:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "bigger pages")),
	ShrinkPage:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
	Home:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
	End:          key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
	Expand:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand/default")),
	Hide:         key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide/default")),
	Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	FilterColumn: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
	Clear:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
	ToggleRow:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
	ToggleAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
	ClearSel:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection")),
	Action:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "bulk action")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	YankCell:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
	YankRow:      key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy row")),
	ExportJSON:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "print as JSON")),
	ExportRaw:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "print raw")),
	ExportPlain:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print table")),
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry Point
// ═══════════════════════════════════════════════════════════════════════════

// RunTableTUI launches the interactive table viewer. It blocks until the
// user quits. If the user requests an export (J/R/P or the export bulk
// action), the rows are printed to stdout after the TUI exits.
func RunTableTUI(ds *source.Dataset, opts DisplayOptions) error {
	m, err := newTableModel(ds, opts)
	if err != nil {
		return err
	}

	if opts.Watch != nil && opts.Reload != nil {
		unsubscribe := opts.Watch.Subscribe(m.s.notifyReload)
		defer unsubscribe()
	}
	defer close(m.s.done)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// Check if user requested output after exit
	if fm, ok := finalModel.(tableModel); ok {
		return fm.printExit()
	}
	return nil
}

func newTableModel(ds *source.Dataset, opts DisplayOptions) (tableModel, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	colWidth := opts.ColWidth
	if colWidth < minColWidth {
		colWidth = defaultColWidth
	}

	s := &session{
		pager:    opts.Pager,
		reload:   opts.Reload,
		log:      log,
		timeout:  timeout,
		reloadCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	// Initialize filter input
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 100
	ti.Width = 30

	m := tableModel{
		title:         opts.Title,
		opts:          opts,
		present:       presentationFor(opts.Mode),
		s:             s,
		colWidth:      colWidth,
		filterInput:   ti,
		confirmAction: -1,
	}
	if m.title == "" {
		m.title = ds.Name
	}
	if f := opts.Filter; f != nil && f.Predicate == nil {
		m.filterColumn = f.ColumnKey
		m.filterInput.SetValue(f.Query)
	}

	if err := m.buildGrid(ds, gridConfig(ds, opts)); err != nil {
		return tableModel{}, err
	}
	return m, nil
}

// buildGrid (re)creates the engine for ds, attaching the front end's hooks.
func (m *tableModel) buildGrid(ds *source.Dataset, cfg grid.Config[source.Record, string]) error {
	if cfg.Pagination == grid.ServerPaged && m.s.pager != nil {
		cfg.Modes.Page = grid.Controlled
		cfg.OnPageChange = m.s.requestPage
	}
	cfg.BulkActions = m.s.bulkActions(ds.Fields)

	g, err := grid.NewTable(cfg)
	if err != nil {
		return err
	}
	m.s.g = g
	m.fields = ds.Fields
	m.colStates = make([]colState, len(ds.Fields))
	m.recomputeWidths()
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Messages and commands
// ═══════════════════════════════════════════════════════════════════════════

type pageLoadedMsg struct {
	seq  int
	page grid.PageState
	ds   *source.Dataset
	err  error
}

type reloadMsg struct{}

type datasetLoadedMsg struct {
	ds  *source.Dataset
	err error
}

// requestPage is the controlled page callback: the grid asks, we fetch, and
// the page is installed when the rows arrive.
func (s *session) requestPage(p grid.PageState) {
	s.fetchSeq++
	seq := s.fetchSeq
	s.g.SetLoading(true)
	s.log.Debug("fetching page", zap.Int("index", p.Index), zap.Int("size", p.Size))

	pager, timeout := s.pager, s.timeout
	s.pending = append(s.pending, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ds, err := pager.Page(ctx, p.Index*p.Size, p.Size)
		return pageLoadedMsg{seq: seq, page: p, ds: ds, err: err}
	})
}

// notifyReload runs on the watcher goroutine and must not block.
func (s *session) notifyReload() {
	select {
	case s.reloadCh <- struct{}{}:
	default:
	}
}

func (s *session) waitReload() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.reloadCh:
			return reloadMsg{}
		case <-s.done:
			return nil
		}
	}
}

func (s *session) loadDataset() tea.Cmd {
	reload, timeout := s.reload, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ds, err := reload(ctx)
		return datasetLoadedMsg{ds: ds, err: err}
	}
}

// drain returns the commands grid callbacks queued during this update.
func (s *session) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// ═══════════════════════════════════════════════════════════════════════════
// Bubble Tea Interface
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) Init() tea.Cmd {
	if m.opts.Watch != nil && m.s.reload != nil {
		return m.s.waitReload()
	}
	return nil
}

func (m tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if nm, ok := next.(tableModel); ok && nm.s.quit {
		return nm, tea.Quit
	}
	return next, tea.Batch(cmd, m.s.drain())
}

func (m tableModel) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampCursor()

	case animTickMsg:
		// Handle animation frame
		cmd := m.updateAnimation()
		return m, cmd

	case statusClearMsg:
		// Clear the flash message if it has expired
		if !m.s.statusUntil.IsZero() && time.Now().After(m.s.statusUntil) {
			m.s.statusMsg = ""
			m.s.statusUntil = time.Time{}
		}
		return m, nil

	case pageLoadedMsg:
		return m.onPageLoaded(msg)

	case reloadMsg:
		m.s.log.Debug("source changed, reloading")
		return m, m.s.loadDataset()

	case datasetLoadedMsg:
		cmd := m.onDatasetLoaded(msg)
		return m, tea.Batch(cmd, m.s.waitReload())

	case tea.KeyMsg:
		// Cancel any ongoing animation when user presses a key
		m.cancelAnimation()

		if m.mode == tableModeFilter {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m tableModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.s.g

	// Any key other than a repeat of the pending action cancels the confirm.
	pendingConfirm := m.confirmAction
	m.confirmAction = -1

	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Clear):
		if g.FilterState() != nil {
			m.clearFilter()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Filter):
		return m.startFilter("")

	case key.Matches(msg, tableKeys.FilterColumn):
		if m.colCursor < len(m.fields) {
			return m.startFilter(m.fields[m.colCursor].Name)
		}

	case key.Matches(msg, tableKeys.Sort):
		if m.colCursor < len(m.fields) {
			g.SetSort(m.fields[m.colCursor].Name)
			m.resetRows()
		}

	case key.Matches(msg, tableKeys.NextPage):
		if m.pagingEnabled() {
			g.SetPage(g.PageState().Index + 1)
			m.resetRows()
		} else {
			m.scrollScreen(1)
		}

	case key.Matches(msg, tableKeys.PrevPage):
		if m.pagingEnabled() {
			g.SetPage(g.PageState().Index - 1)
			m.resetRows()
		} else {
			m.scrollScreen(-1)
		}

	case key.Matches(msg, tableKeys.GrowPage):
		if size, ok := nextPageSize(g.PageState().Size, 1); ok {
			g.SetPageSize(size)
			m.resetRows()
		}

	case key.Matches(msg, tableKeys.ShrinkPage):
		if size, ok := nextPageSize(g.PageState().Size, -1); ok {
			g.SetPageSize(size)
			m.resetRows()
		}

	case key.Matches(msg, tableKeys.ToggleRow):
		if id, ok := m.cursorID(); ok {
			g.ToggleRowSelection(id)
		}

	case key.Matches(msg, tableKeys.ToggleAll):
		g.ToggleSelectAllVisible()

	case key.Matches(msg, tableKeys.ClearSel):
		g.ClearSelection()

	case key.Matches(msg, tableKeys.Action):
		return m.runAction(int(msg.String()[0]-'1'), pendingConfirm)

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Left):
		colStartX := m.getColStartX(m.colCursor)

		if colStartX < m.scrollX {
			m.scrollX -= 3
			if m.scrollX < colStartX {
				m.scrollX = colStartX
			}
			if m.scrollX < 0 {
				m.scrollX = 0
			}
		} else if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisibleFromRight()
		}

	case key.Matches(msg, tableKeys.Right):
		colEndX := m.getColEndX(m.colCursor)
		viewportEndX := m.scrollX + m.viewportWidth()

		if colEndX > viewportEndX {
			m.scrollX += 3
			if maxX := m.getMaxScrollX(); m.scrollX > maxX {
				m.scrollX = maxX
			}
		} else if m.colCursor < len(m.fields)-1 {
			m.colCursor++
			m.ensureColVisibleFromLeft()
		}

	case key.Matches(msg, tableKeys.ShiftLeft):
		cmd := m.startAnimation(m.scrollX-max(m.width/2, 1), m.scrollY)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftRight):
		cmd := m.startAnimation(m.scrollX+max(m.width/2, 1), m.scrollY)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftUp):
		halfPage := max(m.visibleRowCount()/2, 1)
		m.cursor = max(m.cursor-halfPage, 0)
		cmd := m.startAnimation(m.scrollX, m.scrollY-halfPage)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftDown):
		halfPage := max(m.visibleRowCount()/2, 1)
		m.cursor = max(min(m.cursor+halfPage, m.rowCount()-1), 0)
		cmd := m.startAnimation(m.scrollX, m.scrollY+halfPage)
		return m, cmd

	case key.Matches(msg, tableKeys.ScrollUp):
		m.scrollScreen(-1)

	case key.Matches(msg, tableKeys.ScrollDown):
		m.scrollScreen(1)

	case key.Matches(msg, tableKeys.Home):
		m.cursor = 0
		m.scrollY = 0
		m.scrollX = 0

	case key.Matches(msg, tableKeys.End):
		if n := m.rowCount(); n > 0 {
			m.cursor = n - 1
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Expand):
		if m.colCursor < len(m.colStates) {
			if m.colStates[m.colCursor] == colStateExpanded {
				m.colStates[m.colCursor] = colStateDefault
			} else {
				m.colStates[m.colCursor] = colStateExpanded
			}
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Hide):
		if m.colCursor < len(m.colStates) {
			if m.colStates[m.colCursor] == colStateHidden {
				m.colStates[m.colCursor] = colStateDefault
			} else {
				m.colStates[m.colCursor] = colStateHidden
			}
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.YankCell):
		return m, m.yankCell()

	case key.Matches(msg, tableKeys.YankRow):
		return m, m.yankRow()

	case key.Matches(msg, tableKeys.ExportJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportPlain):
		m.exitMode = exitPlain
		return m, tea.Quit
	}

	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Filter
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) startFilter(column string) (tea.Model, tea.Cmd) {
	m.mode = tableModeFilter
	if column != m.filterColumn {
		m.filterInput.SetValue("")
	}
	m.filterColumn = column
	if column == "" {
		m.filterInput.Prompt = "/"
	} else {
		m.filterInput.Prompt = column + "/"
	}
	m.filterInput.Focus()
	return m, textinput.Blink
}

func (m tableModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = tableModeNormal
		m.filterInput.Blur()
		m.clearFilter()
		return m, nil
	case tea.KeyEnter:
		m.mode = tableModeNormal
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)

	// Live filter as user types
	m.applyFilter(m.filterInput.Value())
	return m, cmd
}

func (m *tableModel) applyFilter(query string) {
	switch {
	case query == "":
		m.s.g.SetFilter(nil)
	case m.filterColumn == "":
		m.s.g.SetFilter(grid.AnyColumnQuery[source.Record](query))
	default:
		m.s.g.SetFilter(grid.ColumnQuery[source.Record](m.filterColumn, query))
	}
	m.resetRows()
}

func (m *tableModel) clearFilter() {
	m.filterInput.SetValue("")
	m.filterColumn = ""
	m.s.g.SetFilter(nil)
	m.resetRows()
}

// ═══════════════════════════════════════════════════════════════════════════
// Paging and reloads
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) pagingEnabled() bool {
	p := m.s.g.PageState()
	return p.Size > 0 && p.PageCount() > 1
}

// nextPageSize steps through pageSizeSteps. Paging off (0) only grows into
// the largest step when shrinking.
func nextPageSize(cur, dir int) (int, bool) {
	if cur <= 0 {
		if dir < 0 {
			return pageSizeSteps[len(pageSizeSteps)-1], true
		}
		return 0, false
	}
	i, found := slices.BinarySearch(pageSizeSteps, cur)
	switch {
	case dir > 0 && found && i+1 < len(pageSizeSteps):
		return pageSizeSteps[i+1], true
	case dir > 0 && !found && i < len(pageSizeSteps):
		return pageSizeSteps[i], true
	case dir < 0 && i > 0:
		return pageSizeSteps[i-1], true
	}
	return 0, false
}

func (m tableModel) onPageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.s.fetchSeq {
		return m, nil
	}
	g := m.s.g
	g.SetLoading(false)
	if msg.err != nil {
		m.s.log.Warn("page fetch failed", zap.Error(msg.err))
		return m, m.setError(fmt.Sprintf("page fetch failed: %s", msg.err))
	}
	if err := g.SetRows(msg.ds.Records); err != nil {
		return m, m.setError(err.Error())
	}
	g.SyncPage(msg.page)
	m.recomputeWidths()
	m.resetRows()
	return m, nil
}

func (m *tableModel) onDatasetLoaded(msg datasetLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.s.log.Warn("reload failed", zap.Error(msg.err))
		return m.setError(fmt.Sprintf("reload failed: %s", msg.err))
	}
	g := m.s.g
	ds := msg.ds

	if slices.Equal(fieldNames(m.fields), ds.FieldNames()) {
		if err := g.SetRows(ds.Records); err != nil {
			return m.setError(err.Error())
		}
		m.fields = ds.Fields
		m.recomputeWidths()
	} else {
		// The schema changed: rebuild, carrying over whatever state still applies.
		cfg := gridConfig(ds, m.opts)
		cfg.Sort = g.SortState()
		cfg.Filter = g.FilterState()
		if f := cfg.Filter; f != nil && f.ColumnKey != "" && ds.FieldIndex(f.ColumnKey) < 0 {
			cfg.Filter = nil
			m.filterColumn = ""
			m.filterInput.SetValue("")
		}
		cfg.Page = g.PageState()
		cfg.Selection = g.SelectedIDs()
		if err := m.buildGrid(ds, cfg); err != nil {
			return m.setError(err.Error())
		}
		m.colCursor = min(m.colCursor, max(len(m.fields)-1, 0))
	}
	m.clampCursor()
	return m.setStatus(fmt.Sprintf("Reloaded %d rows", len(ds.Records)))
}

func fieldNames(fields []source.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// ═══════════════════════════════════════════════════════════════════════════
// Row / Column Helpers
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) visibleRows() []source.Record {
	return m.s.g.VisibleRows()
}

func (m tableModel) rowCount() int {
	return len(m.visibleRows())
}

func (m tableModel) cursorRow() (source.Record, bool) {
	rows := m.visibleRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return source.Record{}, false
	}
	return rows[m.cursor], true
}

func (m tableModel) cursorID() (string, bool) {
	r, ok := m.cursorRow()
	if !ok {
		return "", false
	}
	return RecordID(r)
}

// resetRows moves back to the top after the visible row set changed shape.
func (m *tableModel) resetRows() {
	m.cursor = 0
	m.scrollY = 0
}

func (m *tableModel) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.ensureRowVisible()
}

func (m *tableModel) recomputeWidths() {
	m.fullColWidths = make([]int, len(m.fields))
	for i, f := range m.fields {
		m.fullColWidths[i] = textWidth(f.Name) + 2 // room for the sort marker
	}
	for _, rec := range m.s.g.Rows() {
		for i := range m.fields {
			if w := textWidth(cellText(rec.Value(i))); w > m.fullColWidths[i] {
				m.fullColWidths[i] = w
			}
		}
	}
}

func (m tableModel) getColDisplayWidth(colIdx int) int {
	if colIdx >= len(m.colStates) {
		return m.colWidth
	}

	w := m.fullColWidths[colIdx]
	if col, ok := m.s.g.Column(m.fields[colIdx].Name); ok && col.Width > 0 {
		w = col.Width
	}

	switch m.colStates[colIdx] {
	case colStateExpanded:
		return max(w, minColWidth)
	case colStateHidden:
		return hiddenColWidth
	default:
		return max(min(w, m.colWidth), minColWidth)
	}
}

func (m tableModel) getColStartX(colIdx int) int {
	x := 0
	for i := 0; i < colIdx && i < len(m.fields); i++ {
		x += m.getColDisplayWidth(i) + m.present.gap
	}
	return x
}

func (m tableModel) getColEndX(colIdx int) int {
	return m.getColStartX(colIdx) + m.getColDisplayWidth(colIdx)
}

func (m tableModel) getTotalWidth() int {
	return m.getColStartX(len(m.fields))
}

func (m tableModel) viewportWidth() int {
	return max(m.width-2-gutterWidth, 1)
}

func (m tableModel) getMaxScrollX() int {
	return max(m.getTotalWidth()-m.viewportWidth(), 0)
}

// headerLines is the height of the column header block.
func (m tableModel) headerLines() int {
	if m.present.separator {
		return 2
	}
	return 1
}

// bodyHeaderLines is how many header lines scroll with the rows: all of
// them when the header is not pinned.
func (m tableModel) bodyHeaderLines() int {
	if m.present.pinHeader {
		return 0
	}
	return m.headerLines()
}

func (m tableModel) totalBodyLines() int {
	return m.bodyHeaderLines() + m.rowCount()
}

func (m tableModel) getMaxScrollY() int {
	return max(m.totalBodyLines()-m.visibleRowCount(), 0)
}

// visibleRowCount is the number of body lines on screen: the terminal minus
// title, filter bar, status line, help line and a pinned header.
func (m tableModel) visibleRowCount() int {
	count := m.height - 4
	if m.present.pinHeader {
		count -= m.headerLines()
	}
	return max(count, 1)
}

func (m *tableModel) scrollScreen(dir int) {
	n := m.rowCount()
	if n == 0 {
		return
	}
	m.cursor = max(min(m.cursor+dir*m.visibleRowCount(), n-1), 0)
	m.ensureRowVisible()
}

// ═══════════════════════════════════════════════════════════════════════════
// Exit
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) printExit() error {
	g := m.s.g
	switch m.exitMode {
	case exitJSON:
		return PrintJSON(os.Stdout, m.fields, g.FilteredRows())
	case exitRaw:
		return PrintRaw(os.Stdout, g.FilteredRows())
	case exitPlain:
		PrintPlainTable(os.Stdout, m.fields, g.FilteredRows(), m.opts.Mode, fmt.Sprintf("(%d rows)", g.FilteredCount()))
	}
	if m.s.exportRows != nil {
		return PrintJSON(os.Stdout, m.fields, m.s.exportRows)
	}
	return nil
}

func headerTitle(m tableModel) string {
	g := m.s.g
	total := len(g.Rows())
	if g.PaginationMode() == grid.ServerPaged {
		total = g.PageState().TotalCount
	}
	parts := []string{fmt.Sprintf("%s: %d rows", m.title, total)}
	if g.FilterState() != nil {
		parts[0] = fmt.Sprintf("%s: %d/%d rows", m.title, g.FilteredCount(), total)
	}
	parts = append(parts, fmt.Sprintf("%d columns", len(m.fields)))
	if s := g.SortState(); s.Active() {
		parts = append(parts, fmt.Sprintf("sorted by %s %s", s.ColumnKey, s.Direction))
	}
	if g.IsLoading() {
		parts = append(parts, "loading...")
	}
	return strings.Join(parts, ", ")
}
