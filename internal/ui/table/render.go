package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imgajeed76/datagrid/internal/grid"
	"github.com/imgajeed76/datagrid/internal/source"
	"github.com/imgajeed76/datagrid/internal/ui/styles"
)

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder

	// Header with title info
	sb.WriteString(styles.Render(styles.Bold.Foreground(styles.Accent), headerTitle(m)))

	// Show state indicators for modified columns
	var stateInfo []string
	for i, state := range m.colStates {
		switch state {
		case colStateExpanded:
			stateInfo = append(stateInfo, m.fields[i].Name+"+")
		case colStateHidden:
			stateInfo = append(stateInfo, m.fields[i].Name+"-")
		}
	}
	if len(stateInfo) > 0 {
		sb.WriteString(styles.MutedMsg(fmt.Sprintf("  [%s]", strings.Join(stateInfo, ", "))))
	}
	sb.WriteString("\n")

	// Filter bar
	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n")

	sb.WriteString(m.renderTable())

	sb.WriteString(m.renderStateLine())
	sb.WriteString("\n")

	// Footer
	switch {
	case m.s.statusActive() && m.s.statusKind == statusError:
		sb.WriteString(styles.ErrorText(m.s.statusMsg))
	case m.s.statusActive() && m.s.statusKind == statusWarn:
		sb.WriteString(styles.WarningMsg(m.s.statusMsg))
	case m.s.statusActive():
		sb.WriteString(styles.SuccessMsg(m.s.statusMsg))
	case m.mode == tableModeFilter:
		sb.WriteString(styles.MutedMsg("enter confirm  esc clear"))
	default:
		sb.WriteString(styles.MutedMsg("↑↓←→ nav  s sort  / filter  f filter col  space select  a page  n/p page  +/- size  y copy  J json  q quit"))
	}

	return sb.String()
}

func (m tableModel) renderFilterBar() string {
	if m.mode == tableModeFilter {
		return m.filterInput.View()
	}
	f := m.s.g.FilterState()
	switch {
	case f == nil:
		return ""
	case f.Predicate != nil:
		return styles.Render(styles.FilterStyle, "filter: custom")
	case f.ColumnKey == "":
		return styles.Render(styles.FilterStyle, fmt.Sprintf("filter: %s", f.Query))
	}
	return styles.Render(styles.FilterStyle, fmt.Sprintf("filter: %s/%s", f.ColumnKey, f.Query))
}

// ═══════════════════════════════════════════════════════════════════════════
// Render Table
// ═══════════════════════════════════════════════════════════════════════════

// renderTable draws the header and the visible body lines. Every line ends
// with a newline.
func (m tableModel) renderTable() string {
	g := m.s.g
	if len(m.fields) == 0 {
		return "No columns\n"
	}

	viewportWidth := m.viewportWidth()
	header := m.headerBlock()

	var sb strings.Builder
	if m.present.pinHeader {
		for _, line := range header {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	rows := m.visibleRows()
	hb := m.bodyHeaderLines()
	visible := m.visibleRowCount()
	drawn := 0

	for line := m.scrollY; line < m.scrollY+visible && line < hb+len(rows); line++ {
		if line < hb {
			sb.WriteString(header[line])
		} else {
			idx := line - hb
			sb.WriteString(m.renderRow(rows[idx], idx == m.cursor, viewportWidth))
		}
		sb.WriteString("\n")
		drawn++
	}

	if len(rows) == 0 && drawn < visible {
		var msg string
		switch {
		case g.IsLoading():
			msg = "Loading..."
		case g.IsEmpty():
			msg = "No rows"
		case g.NoMatches():
			msg = "No rows match the filter"
		}
		sb.WriteString(strings.Repeat(" ", gutterWidth))
		sb.WriteString(styles.MutedMsg(msg))
		sb.WriteString("\n")
		drawn++
	}

	// Keep the state line anchored at the bottom.
	for ; drawn < visible; drawn++ {
		sb.WriteString("\n")
	}

	return sb.String()
}

// headerBlock is the column header, with a separator rule when the
// presentation has one, already clipped to the viewport.
func (m tableModel) headerBlock() []string {
	g := m.s.g
	viewportWidth := m.viewportWidth()
	sortState := g.SortState()

	var head, sep strings.Builder
	for i, f := range m.fields {
		colWidth := m.getColDisplayWidth(i)

		var name string
		switch {
		case m.colStates[i] == colStateHidden:
			name = PadOrTruncate("...", colWidth)
		case sortState.ColumnKey == f.Name:
			name = Truncate(f.Name, max(colWidth-2, 1)) + " " + styles.SortIndicator(sortState.Direction == grid.Descending)
		default:
			name = PadOrTruncate(f.Name, colWidth)
		}
		name = padVisual(name, colWidth)

		rule := strings.Repeat("─", colWidth)
		if i == m.colCursor {
			head.WriteString(styles.Render(styles.Bold.Foreground(styles.Accent), name))
			sep.WriteString(styles.Render(lipgloss.NewStyle().Foreground(styles.Accent), rule))
		} else {
			head.WriteString(styles.Render(styles.HeaderStyle.Foreground(styles.Info), name))
			sep.WriteString(styles.Render(styles.MutedStyle, rule))
		}
		head.WriteString(strings.Repeat(" ", m.present.gap))
		sep.WriteString(strings.Repeat(" ", m.present.gap))
	}

	gutter := padVisual(styles.Checkbox(m.allVisibleSelected(), m.someVisibleSelected()), gutterWidth)
	lines := []string{gutter + applyViewport(head.String(), m.scrollX, viewportWidth)}
	if m.present.separator {
		lines = append(lines, strings.Repeat(" ", gutterWidth)+applyViewport(sep.String(), m.scrollX, viewportWidth))
	}
	return lines
}

func (m tableModel) renderRow(rec source.Record, isCursorRow bool, viewportWidth int) string {
	g := m.s.g
	id, hasID := RecordID(rec)
	selected := hasID && g.IsSelected(id)

	rowStyle := lipgloss.NewStyle()
	switch {
	case isCursorRow:
		rowStyle = styles.CursorStyle
	case selected:
		rowStyle = styles.SelectedRowStyle
	}
	cursorCellStyle := lipgloss.NewStyle().Background(styles.Accent).Foreground(lipgloss.Color("#000000"))

	var sb strings.Builder
	for i, f := range m.fields {
		colWidth := m.getColDisplayWidth(i)
		v := rec.Value(i)

		var text string
		switch {
		case m.colStates[i] == colStateHidden:
			text = PadOrTruncate("...", colWidth)
		default:
			text = alignCell(Truncate(cellText(v), colWidth), colWidth, f.Kind.Numeric())
		}

		style := rowStyle
		switch {
		case isCursorRow && i == m.colCursor:
			style = cursorCellStyle
		case grid.IsNil(v) && !isCursorRow:
			style = styles.NullStyle.Inherit(rowStyle)
		}
		sb.WriteString(styles.Render(style, text))
		sb.WriteString(strings.Repeat(" ", m.present.gap))
	}

	gutter := padVisual(styles.Checkbox(selected, false), gutterWidth)
	return gutter + applyViewport(sb.String(), m.scrollX, viewportWidth)
}

// renderStateLine shows scroll position, paging, the selection count and
// the bulk action buttons.
func (m tableModel) renderStateLine() string {
	g := m.s.g
	var parts []string

	// Scroll indicators
	var indicators []string
	if m.scrollX > 0 {
		indicators = append(indicators, "◀")
	}
	if m.scrollX+m.viewportWidth() < m.getTotalWidth() {
		indicators = append(indicators, "▶")
	}
	if m.scrollY > 0 {
		indicators = append(indicators, "▲")
	}
	if m.scrollY+m.visibleRowCount() < m.totalBodyLines() {
		indicators = append(indicators, "▼")
	}
	if len(indicators) > 0 {
		parts = append(parts, styles.MutedMsg(strings.Join(indicators, " ")))
	}

	if p := g.PageState(); p.Size > 0 {
		parts = append(parts, styles.Mutef("page %d/%d (%d per page)", p.Index+1, g.PageCount(), p.Size))
	}

	if n := g.SelectedCount(); n > 0 {
		parts = append(parts, styles.Render(styles.CheckStyle, fmt.Sprintf("%d selected", n)))
	}

	enabled := g.BulkActionsEnabled()
	for i, a := range g.BulkActions() {
		label := fmt.Sprintf("[%s %s]", a.Key, a.Label)
		switch {
		case m.confirmAction == i:
			parts = append(parts, styles.WarningText(label+" again to confirm"))
		case enabled:
			parts = append(parts, styles.Render(actionStyle(a.Variant), label))
		default:
			parts = append(parts, styles.Mute(label))
		}
	}

	return strings.Join(parts, "  ")
}

// allVisibleSelected drives the header checkbox.
func (m tableModel) allVisibleSelected() bool {
	return m.rowCount() > 0 && m.s.g.IsAllVisibleSelected()
}

func (m tableModel) someVisibleSelected() bool {
	g := m.s.g
	for _, id := range g.VisibleIDs() {
		if g.IsSelected(id) {
			return true
		}
	}
	return false
}
